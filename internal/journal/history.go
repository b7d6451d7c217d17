package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/reconciler"
)

// Run is one journaled sync run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero" yaml:"finished_at,omitempty"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Status     string    `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Planned    int       `json:"planned" yaml:"planned"`
	Applied    int       `json:"applied" yaml:"applied"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
}

// Duration returns how long the run took, or 0 while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Entry is one journaled action.
type Entry struct {
	Seq        int             `json:"seq" yaml:"seq"`
	Outcome    string          `json:"outcome" yaml:"outcome"`
	Kind       reconciler.Kind `json:"kind" yaml:"kind"`
	Entity     string          `json:"entity" yaml:"entity"`
	SourceID   int64           `json:"source_id" yaml:"source_id"`
	TargetID   int64           `json:"target_id" yaml:"target_id"`
	Field      string          `json:"field,omitempty" yaml:"field,omitempty"`
	OldValue   string          `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue   string          `json:"new_value,omitempty" yaml:"new_value,omitempty"`
	Reason     string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	RecordedAt time.Time       `json:"recorded_at" yaml:"recorded_at"`
}

// Runs returns the most recent runs, newest first.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, errors.NewValidationError("limit", limit, "must be positive")
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, started_at, COALESCE(finished_at, ''), dry_run, status, error, planned, applied, skipped
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewIOError("read", j.path, err)
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.DryRun, &r.Status, &r.Error,
			&r.Planned, &r.Applied, &r.Skipped); err != nil {
			return nil, errors.NewIOError("read", j.path, err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIOError("read", j.path, err)
	}
	return runs, nil
}

// Entries returns the actions of a run in the order they were recorded.
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, errors.NewValidationError("run_id", runID, "must be a UUID")
	}

	var exists int
	err := j.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("run", runID)
	}
	if err != nil {
		return nil, errors.NewIOError("read", j.path, err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, outcome, kind, entity, source_id, target_id, field, old_value, new_value, reason, recorded_at
		FROM actions WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.NewIOError("read", j.path, err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var kind, recorded string
		if err := rows.Scan(&e.Seq, &e.Outcome, &kind, &e.Entity, &e.SourceID, &e.TargetID,
			&e.Field, &e.OldValue, &e.NewValue, &e.Reason, &recorded); err != nil {
			return nil, errors.NewIOError("read", j.path, err)
		}
		e.Kind = reconciler.Kind(kind)
		e.RecordedAt = parseTime(recorded)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIOError("read", j.path, err)
	}
	return entries, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
