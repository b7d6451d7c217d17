package reconciler

import (
	"context"
	"strconv"

	"github.com/agentstation/harvestsync/pkg/crossref"
	"github.com/agentstation/harvestsync/pkg/differ"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

// PlanClients returns the client actions needed so that every contact has a
// Harvest client with the contact's display name. Only the name is compared.
func PlanClients(ctx context.Context, contacts []rentman.Contact, clients []harvest.Client) []Action {
	logger := logging.FromContext(ctx)
	d := differ.New()
	actions := []Action{}

	for _, contact := range contacts {
		client, ok := crossref.Find(ctx, clients, clientAddress, contact.ID)
		if !ok {
			change := differ.Added("client", contact.DisplayName)
			actions = append(actions, Action{
				Kind:     KindCreateClient,
				Entity:   EntityClient,
				SourceID: contact.ID,
				NewClient: &harvest.NewClient{
					Name:    contact.DisplayName,
					Address: crossref.Format(contact.ID),
				},
				Change: &change,
			})
			continue
		}

		if change := d.String("name", client.Name, contact.DisplayName); change != nil {
			name := contact.DisplayName
			actions = append(actions, Action{
				Kind:        KindUpdateClient,
				Entity:      EntityClient,
				SourceID:    contact.ID,
				TargetID:    client.ID,
				ClientPatch: &harvest.ClientPatch{Name: &name},
				Change:      change,
			})
		}
	}

	logger.Debug().
		Int("contacts", len(contacts)).
		Int("clients", len(clients)).
		Int("actions", len(actions)).
		Msg("Planned client actions")
	return actions
}

// ApplyClients writes client actions in order and returns the clients that
// were created. The first failed write stops the run; writes before it stay.
func ApplyClients(ctx context.Context, w ClientWriter, actions []Action, obs Observer) ([]harvest.Client, error) {
	ctx = logging.WithEntity(ctx, EntityClient)
	logger := logging.FromContext(ctx)
	created := []harvest.Client{}

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		switch a.Kind {
		case KindSkip:
			logger.Warn().Int64("source_id", a.SourceID).Str("skip_reason", a.Reason).Msg("Skipping client")
		case KindCreateClient:
			client, err := w.CreateClient(ctx, *a.NewClient)
			if err != nil {
				return created, errors.NewWriteError("create", EntityClient, "for contact "+crossref.Format(a.SourceID), err)
			}
			a.TargetID = client.ID
			created = append(created, client)
			logger.Info().Int64("source_id", a.SourceID).Int64("client_id", client.ID).Str("name", client.Name).Msg("Created client")
		case KindUpdateClient:
			if err := w.UpdateClient(ctx, a.TargetID, *a.ClientPatch); err != nil {
				return created, errors.NewWriteError("update", EntityClient, strconv.FormatInt(a.TargetID, 10), err)
			}
			logger.Info().Int64("source_id", a.SourceID).Int64("client_id", a.TargetID).Msg("Updated client name")
		default:
			return created, errors.NewValidationError("kind", a.Kind, "not a client action")
		}
		notify(ctx, obs, a)
	}
	return created, nil
}
