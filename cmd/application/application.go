// Package application provides the application interface for harvestsync commands.
//
// Commands accept an Application rather than the concrete app, so they can be
// tested against fakes:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...harvestsync.Option) (harvestsync.Client, error) {
//	        return harvestsync.New(source, target, append(opts, harvestsync.WithFallbackClientID(500))...)
//	    },
//	}
//	cmd := sync.NewCommand(mock)
package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/internal/journal"
)

// Application provides what commands need from the running app.
type Application interface {
	// Client builds a sync client from the loaded configuration. Extra options
	// are applied after the configured ones. The run journal is attached when
	// it can be opened.
	Client(opts ...harvestsync.Option) (harvestsync.Client, error)

	// SyncInterval returns the configured interval for periodic mode.
	SyncInterval() time.Duration

	// History returns the run journal.
	History() (History, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// History reads journaled runs.
type History interface {
	Runs(ctx context.Context, limit int) ([]journal.Run, error)
	Entries(ctx context.Context, runID string) ([]journal.Entry, error)
}

var _ History = (*journal.Journal)(nil)
