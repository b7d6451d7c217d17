// Package journal keeps an append-only SQLite record of sync runs and the
// actions they applied or skipped.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/reconciler"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// InMemory opens a journal that lives only as long as the process.
const InMemory = ":memory:"

// Outcome of a recorded action.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
)

// Run status values.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// timeLayout has a fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal wraps a SQLite database connection
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens the journal at path, creating it and its directory if needed,
// and applies pending migrations.
func Open(path string) (*Journal, error) {
	if path != InMemory {
		path = expandHome(path)
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// one connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	if path != InMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.NewIOError("configure", path, err)
		}
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// migrate runs all pending migrations.
func (j *Journal) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return errors.WrapIO("read", "migrations", err)
	}
	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrations = append(migrations, entry.Name())
		}
	}
	sort.Strings(migrations)

	if _, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		)
	`); err != nil {
		return errors.NewIOError("migrate", j.path, err)
	}

	for _, migration := range migrations {
		var count int
		if err := j.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", migration).Scan(&count); err != nil {
			return errors.NewIOError("migrate", migration, err)
		}
		if count > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + migration)
		if err != nil {
			return errors.WrapIO("read", migration, err)
		}

		tx, err := j.db.Begin()
		if err != nil {
			return errors.NewIOError("migrate", migration, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return errors.NewIOError("migrate", migration, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration); err != nil {
			_ = tx.Rollback()
			return errors.NewIOError("migrate", migration, err)
		}
		if err := tx.Commit(); err != nil {
			return errors.NewIOError("migrate", migration, err)
		}
	}
	return nil
}

// Attach records every run of hs through its hooks. Journal failures are
// logged and never fail the run.
func (j *Journal) Attach(hs harvestsync.Hooks) {
	hs.OnActionApplied(func(ctx context.Context, a reconciler.Action) {
		if err := j.RecordAction(ctx, logging.RunID(ctx), OutcomeApplied, a); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Failed to journal action")
		}
	})
	hs.OnActionSkipped(func(ctx context.Context, a reconciler.Action) {
		if err := j.RecordAction(ctx, logging.RunID(ctx), OutcomeSkipped, a); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Failed to journal skip")
		}
	})
	hs.OnRunFinished(func(ctx context.Context, result *harvestsync.Result, runErr error) {
		if err := j.FinishRun(ctx, result, runErr); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Failed to journal run")
		}
	})
}

// RecordAction appends one action to a run, opening the run if needed.
func (j *Journal) RecordAction(ctx context.Context, runID, outcome string, a reconciler.Action) error {
	if _, err := uuid.Parse(runID); err != nil {
		return errors.NewValidationError("run_id", runID, "must be a UUID")
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIOError("write", j.path, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, started_at, status) VALUES (?, ?, ?)`,
		runID, now, StatusRunning); err != nil {
		return errors.NewIOError("write", j.path, err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM actions WHERE run_id = ?`, runID).Scan(&seq); err != nil {
		return errors.NewIOError("read", j.path, err)
	}

	var field, oldValue, newValue string
	if a.Change != nil {
		field, oldValue, newValue = a.Change.Path, a.Change.OldValue, a.Change.NewValue
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO actions (id, run_id, seq, outcome, kind, entity, source_id, target_id,
			field, old_value, new_value, reason, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), runID, seq, outcome, string(a.Kind), a.Entity, a.SourceID, a.TargetID,
		field, oldValue, newValue, a.Reason, now); err != nil {
		return errors.NewIOError("write", j.path, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewIOError("write", j.path, err)
	}
	return nil
}

// FinishRun stores the outcome of a run.
func (j *Journal) FinishRun(ctx context.Context, result *harvestsync.Result, runErr error) error {
	if result == nil {
		return errors.NewValidationError("result", nil, "cannot be nil")
	}
	status, message := StatusOK, ""
	if runErr != nil {
		status, message = StatusFailed, runErr.Error()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, dry_run, status, error, planned, applied, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			dry_run = excluded.dry_run,
			status = excluded.status,
			error = excluded.error,
			planned = excluded.planned,
			applied = excluded.applied,
			skipped = excluded.skipped`,
		result.RunID,
		result.StartTime.UTC().Format(timeLayout),
		result.EndTime.UTC().Format(timeLayout),
		result.DryRun,
		status,
		message,
		len(result.Changes()),
		len(result.Applied),
		len(result.Skipped),
	)
	if err != nil {
		return errors.NewIOError("write", j.path, err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
