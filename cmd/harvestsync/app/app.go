// Package app wires configuration, logging, the API clients and the run
// journal into the harvestsync CLI.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/cmd/application"
	"github.com/agentstation/harvestsync/internal/journal"
	harvestapi "github.com/agentstation/harvestsync/internal/sources/harvest"
	rentmanapi "github.com/agentstation/harvestsync/internal/sources/rentman"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
)

// App represents the harvestsync application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// journal is opened on first use
	mu          sync.Mutex
	journal     *journal.Journal
	journalOpen bool
	journalErr  error
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// SyncInterval returns SYNC_INTERVAL, or 0 when the settings did not load.
func (a *App) SyncInterval() time.Duration {
	if a.config.Sync == nil {
		return 0
	}
	return a.config.Sync.Interval
}

// Client builds a sync client against the live Rentman and Harvest APIs.
func (a *App) Client(opts ...harvestsync.Option) (harvestsync.Client, error) {
	settings, err := a.config.Settings()
	if err != nil {
		return nil, err
	}

	source := rentmanapi.New(settings.Rentman.Token,
		rentmanapi.WithBaseURL(settings.Rentman.BaseURL),
	)
	target := harvestapi.New(settings.Harvest.Token, settings.Harvest.AccountID,
		harvestapi.WithBaseURL(settings.Harvest.BaseURL),
		harvestapi.WithUserAgent(settings.Harvest.UserAgent),
	)

	hs, err := harvestsync.New(source, target, append(settings.SyncOptions(), opts...)...)
	if err != nil {
		return nil, err
	}

	if j, err := a.openJournal(); err != nil {
		a.logger.Warn().Err(err).Msg("Run journal unavailable, continuing without it")
	} else {
		j.Attach(hs)
	}
	return hs, nil
}

// History returns the run journal.
func (a *App) History() (application.History, error) {
	j, err := a.openJournal()
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (a *App) openJournal() (*journal.Journal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.journalOpen {
		a.journalOpen = true
		path := ""
		if a.config.Sync != nil {
			path = a.config.Sync.JournalPath
		}
		if path == "" {
			a.journalErr = errors.NewConfigError("JOURNAL_PATH", "is empty", nil)
		} else {
			a.journal, a.journalErr = journal.Open(path)
		}
	}
	return a.journal, a.journalErr
}

// Shutdown closes the run journal if it was opened.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.journal == nil {
		return nil
	}
	err := a.journal.Close()
	a.journal = nil
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Failed to close run journal")
	}
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
