// Package harvestsync keeps Harvest clients and projects in line with Rentman.
//
// Every run takes a full snapshot of both systems, plans the writes that make
// Harvest match Rentman and applies them one at a time. Rentman always wins:
// nothing is ever written back to it, and no Harvest record is deleted.
//
// Example usage:
//
//	hs, err := harvestsync.New(rentmanClient, harvestClient,
//	    harvestsync.WithFallbackClientID(123),
//	    harvestsync.WithExcludedCustomerID(456),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hs.OnActionSkipped(func(ctx context.Context, a reconciler.Action) {
//	    log.Printf("skipped: %s", a)
//	})
//
//	result, err := hs.Sync(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package harvestsync

import (
	"context"
	"time"

	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/reconciler"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

// Source reads Rentman snapshots.
type Source interface {
	Contacts(ctx context.Context) ([]rentman.Contact, error)
	Projects(ctx context.Context) ([]rentman.Project, error)
	Subprojects(ctx context.Context) ([]rentman.Subproject, error)
}

// Target reads and writes Harvest.
type Target interface {
	Clients(ctx context.Context) ([]harvest.Client, error)
	Projects(ctx context.Context) ([]harvest.Project, error)
	reconciler.ClientWriter
	reconciler.ProjectWriter
}

// Syncer runs reconciliations.
type Syncer interface {
	// Sync runs one full reconciliation.
	Sync(ctx context.Context) (*Result, error)

	// Every runs Sync immediately and then on every interval until ctx is done.
	Every(ctx context.Context, interval time.Duration) error
}

// Client reconciles Harvest against Rentman.
type Client interface {
	Syncer

	// Hooks provides access to event callback registration
	Hooks

	// Config returns the configuration the client was built with.
	Config() Config
}

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// client is the internal implementation of the Client interface.
type client struct {
	config Config
	source Source
	target Target
	hooks  *hooks
}

// New creates a Client. The configuration is fixed for its lifetime.
func New(source Source, target Target, opts ...Option) (Client, error) {
	if source == nil || target == nil {
		return nil, errors.NewValidationError("source", nil, "source and target are required")
	}
	cfg, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &client{
		config: *cfg,
		source: source,
		target: target,
		hooks:  newHooks(),
	}, nil
}

// Config returns a copy of the client configuration.
func (c *client) Config() Config {
	cfg := c.config
	return cfg
}
