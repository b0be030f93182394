package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/timer"
)

// LoadTimer returns the persisted timer snapshot, or a stopped one if none
// has been saved yet.
func LoadTimer(ctx context.Context, dbh *sql.DB) (timer.Snapshot, error) {
	var s timer.Snapshot
	var state string
	var started sql.NullString
	var elapsedMS int64
	err := dbh.QueryRowContext(ctx, `
		SELECT state, started_at, elapsed_ms, announced, description, category, project, billable, rate
		FROM timer_state WHERE id = 1
	`).Scan(&state, &started, &elapsedMS, &s.Announced,
		&s.Details.Description, &s.Details.Category, &s.Details.Project, &s.Details.Billable, &s.Details.Rate)
	if errors.Is(err, sql.ErrNoRows) {
		return timer.Snapshot{State: timer.Stopped}, nil
	}
	if err != nil {
		return s, fmt.Errorf("loading timer state: %w", err)
	}

	if s.State, err = timer.ParseState(state); err != nil {
		return s, err
	}
	if started.Valid && started.String != "" {
		if s.StartedAt, err = parseTime(started.String); err != nil {
			return s, fmt.Errorf("timer started_at: %w", err)
		}
	}
	s.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return s, nil
}

// SaveTimer upserts the single timer row.
func SaveTimer(ctx context.Context, dbh *sql.DB, s timer.Snapshot) error {
	var started any
	if !s.StartedAt.IsZero() {
		started = s.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := dbh.ExecContext(ctx, `
		INSERT INTO timer_state (id, state, started_at, elapsed_ms, announced, description, category, project, billable, rate)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			started_at = excluded.started_at,
			elapsed_ms = excluded.elapsed_ms,
			announced = excluded.announced,
			description = excluded.description,
			category = excluded.category,
			project = excluded.project,
			billable = excluded.billable,
			rate = excluded.rate
	`, s.State.String(), started, s.Elapsed.Milliseconds(), s.Announced,
		s.Details.Description, s.Details.Category, s.Details.Project, s.Details.Billable, s.Details.Rate)
	if err != nil {
		return fmt.Errorf("saving timer state: %w", err)
	}
	return nil
}

// CommitStop stores the entry produced by stopping the timer and resets the
// persisted timer, in one transaction.
func CommitStop(ctx context.Context, dbh *sql.DB, e entry.TimeEntry) error {
	tx, err := dbh.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertEntry(ctx, tx, e); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE timer_state
		SET state = 'stopped', started_at = NULL, elapsed_ms = 0, announced = 0,
			description = '', category = '', project = '', billable = 0, rate = 0
		WHERE id = 1
	`); err != nil {
		return fmt.Errorf("resetting timer state: %w", err)
	}
	return tx.Commit()
}
