// Package fake provides in-memory Rentman and Harvest implementations for tests.
package fake

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

// Source is an in-memory Rentman.
type Source struct {
	contacts    []rentman.Contact
	projects    []rentman.Project
	subprojects []rentman.Subproject
	failures    map[string]error
}

// NewSource returns a source serving the given snapshot.
func NewSource(contacts []rentman.Contact, projects []rentman.Project, subprojects []rentman.Subproject) *Source {
	return &Source{
		contacts:    contacts,
		projects:    projects,
		subprojects: subprojects,
		failures:    map[string]error{},
	}
}

// FailWith makes listing resource ("contacts", "projects", "subprojects") fail.
func (s *Source) FailWith(resource string, err error) *Source {
	s.failures[resource] = err
	return s
}

// Contacts implements the Rentman source.
func (s *Source) Contacts(_ context.Context) ([]rentman.Contact, error) {
	if err := s.failures["contacts"]; err != nil {
		return nil, errors.WrapFetch("rentman", "contacts", err)
	}
	return slices.Clone(s.contacts), nil
}

// Projects implements the Rentman source.
func (s *Source) Projects(_ context.Context) ([]rentman.Project, error) {
	if err := s.failures["projects"]; err != nil {
		return nil, errors.WrapFetch("rentman", "projects", err)
	}
	return slices.Clone(s.projects), nil
}

// Subprojects implements the Rentman source.
func (s *Source) Subprojects(_ context.Context) ([]rentman.Subproject, error) {
	if err := s.failures["subprojects"]; err != nil {
		return nil, errors.WrapFetch("rentman", "subprojects", err)
	}
	return slices.Clone(s.subprojects), nil
}

// Call records one write against the Target.
type Call struct {
	Method  string
	ID      int64
	Payload any
}

// Target is an in-memory Harvest that applies writes to its own state.
type Target struct {
	mu       sync.Mutex
	clients  []harvest.Client
	projects []harvest.Project
	nextID   int64
	calls    []Call
	failures map[string]error

	// FailOn, when set, is consulted before each write; a non-nil error fails it.
	FailOn func(c Call) error
}

// NewTarget returns a target holding the given records.
func NewTarget(clients []harvest.Client, projects []harvest.Project) *Target {
	return &Target{
		clients:  slices.Clone(clients),
		projects: slices.Clone(projects),
		nextID:   1000,
		failures: map[string]error{},
	}
}

// FailWith makes listing resource ("clients", "projects") fail.
func (t *Target) FailWith(resource string, err error) *Target {
	t.failures[resource] = err
	return t
}

// Calls returns the writes made so far.
func (t *Target) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.calls)
}

// Clients implements the Harvest target.
func (t *Target) Clients(_ context.Context) ([]harvest.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.failures["clients"]; err != nil {
		return nil, errors.WrapFetch("harvest", "clients", err)
	}
	return slices.Clone(t.clients), nil
}

// Projects implements the Harvest target.
func (t *Target) Projects(_ context.Context) ([]harvest.Project, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.failures["projects"]; err != nil {
		return nil, errors.WrapFetch("harvest", "projects", err)
	}
	return slices.Clone(t.projects), nil
}

func (t *Target) record(c Call) error {
	if t.FailOn != nil {
		if err := t.FailOn(c); err != nil {
			return err
		}
	}
	t.calls = append(t.calls, c)
	return nil
}

// CreateClient implements the Harvest target.
func (t *Target) CreateClient(_ context.Context, c harvest.NewClient) (harvest.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.record(Call{Method: "CreateClient", Payload: c}); err != nil {
		return harvest.Client{}, err
	}
	t.nextID++
	address := c.Address
	client := harvest.Client{ID: t.nextID, Name: c.Name, IsActive: true, Address: &address}
	t.clients = append(t.clients, client)
	return client, nil
}

// UpdateClient implements the Harvest target.
func (t *Target) UpdateClient(_ context.Context, id int64, patch harvest.ClientPatch) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.record(Call{Method: "UpdateClient", ID: id, Payload: patch}); err != nil {
		return err
	}
	for i := range t.clients {
		if t.clients[i].ID == id {
			if patch.Name != nil {
				t.clients[i].Name = *patch.Name
			}
			return nil
		}
	}
	return errors.NewNotFoundError("client", strconv.FormatInt(id, 10))
}

// CreateProject implements the Harvest target.
func (t *Target) CreateProject(_ context.Context, p harvest.NewProject) (harvest.Project, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.record(Call{Method: "CreateProject", Payload: p}); err != nil {
		return harvest.Project{}, err
	}
	t.nextID++
	code, notes := p.Code, p.Notes
	project := harvest.Project{
		ID:       t.nextID,
		Name:     p.Name,
		Code:     &code,
		IsActive: p.IsActive,
		Notes:    &notes,
		ClientID: p.ClientID,
	}
	t.projects = append(t.projects, project)
	return project, nil
}

// UpdateProject implements the Harvest target.
func (t *Target) UpdateProject(_ context.Context, id int64, patch harvest.ProjectPatch) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.record(Call{Method: "UpdateProject", ID: id, Payload: patch}); err != nil {
		return err
	}
	for i := range t.projects {
		p := &t.projects[i]
		if p.ID != id {
			continue
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Code != nil {
			code := *patch.Code
			p.Code = &code
		}
		if patch.ClientID != nil {
			p.ClientID = *patch.ClientID
		}
		if patch.IsActive != nil {
			p.IsActive = *patch.IsActive
		}
		return nil
	}
	return errors.NewNotFoundError("project", strconv.FormatInt(id, 10))
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
