package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
)

const entryColumnsSQL = `id, date, description, duration_minutes, start_time, end_time,
	billable, rate, category, project, source, created_at, edited_at`

// EntryFilter narrows ListEntries and CountEntries. Dates are inclusive
// YYYY-MM-DD bounds; empty fields do not filter.
type EntryFilter struct {
	From     string
	To       string
	Category string
	Project  string
	Billable *bool
	Query    string
	Limit    int
	Offset   int
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertEntry stores a new entry.
func InsertEntry(ctx context.Context, dbh *sql.DB, e entry.TimeEntry) error {
	return insertEntry(ctx, dbh, e)
}

func insertEntry(ctx context.Context, x execer, e entry.TimeEntry) error {
	_, err := x.ExecContext(ctx, `
		INSERT INTO time_entries (`+entryColumnsSQL+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.Date, e.Description, e.DurationMinutes,
		e.StartTime.String(), e.EndTime.String(),
		e.Billable, e.Rate, e.Category, e.Project, string(e.Source),
		e.CreatedAt.UTC().Format(time.RFC3339Nano), nullTime(e.EditedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}
	return nil
}

// GetEntry returns one entry by id. A unique id prefix is accepted too, so
// short ids printed by the CLI can be typed back.
func GetEntry(ctx context.Context, dbh *sql.DB, id string) (entry.TimeEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entry.TimeEntry{}, fmt.Errorf("time entry: %w", ErrNotFound)
	}
	rows, err := dbh.QueryContext(ctx, `
		SELECT `+entryColumnsSQL+`
		FROM time_entries WHERE id = ? OR id LIKE ?
		ORDER BY (id = ?) DESC
		LIMIT 2
	`, id, id+"%", id)
	if err != nil {
		return entry.TimeEntry{}, fmt.Errorf("querying time entry: %w", err)
	}
	defer rows.Close()

	list, err := scanEntries(rows)
	if err != nil {
		return entry.TimeEntry{}, err
	}
	switch {
	case len(list) == 0:
		return entry.TimeEntry{}, fmt.Errorf("time entry %q: %w", id, ErrNotFound)
	case list[0].ID == id, len(list) == 1:
		return list[0], nil
	default:
		return entry.TimeEntry{}, fmt.Errorf("time entry prefix %q is ambiguous", id)
	}
}

// UpdateEntry writes back the mutable fields of an amended entry.
func UpdateEntry(ctx context.Context, dbh *sql.DB, e entry.TimeEntry) error {
	res, err := dbh.ExecContext(ctx, `
		UPDATE time_entries
		SET description = ?, category = ?, project = ?, billable = ?, rate = ?, edited_at = ?
		WHERE id = ?
	`, e.Description, e.Category, e.Project, e.Billable, e.Rate, nullTime(e.EditedAt), e.ID)
	if err != nil {
		return fmt.Errorf("updating time entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("time entry %q: %w", e.ID, ErrNotFound)
	}
	return nil
}

// DeleteEntry removes an entry by id.
func DeleteEntry(ctx context.Context, dbh *sql.DB, id string) error {
	res, err := dbh.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting time entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("time entry %q: %w", id, ErrNotFound)
	}
	return nil
}

// ListEntries returns matching entries, newest day first and in start
// order within a day.
func ListEntries(ctx context.Context, dbh *sql.DB, f EntryFilter) ([]entry.TimeEntry, error) {
	where, args := f.where()
	query := `SELECT ` + entryColumnsSQL + ` FROM time_entries` + where +
		` ORDER BY date DESC, start_time ASC, created_at ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	rows, err := dbh.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListDay returns the entries of one calendar day in start order.
func ListDay(ctx context.Context, dbh *sql.DB, day string) ([]entry.TimeEntry, error) {
	return ListEntries(ctx, dbh, EntryFilter{From: day, To: day})
}

// CountEntries counts matches for f, ignoring Limit and Offset.
func CountEntries(ctx context.Context, dbh *sql.DB, f EntryFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM time_entries`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting time entries: %w", err)
	}
	return n, nil
}

func (f EntryFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.From != "" {
		conds = append(conds, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "date <= ?")
		args = append(args, f.To)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		conds = append(conds, "category = ?")
		args = append(args, c)
	}
	if p := strings.TrimSpace(f.Project); p != "" {
		conds = append(conds, "project = ?")
		args = append(args, p)
	}
	if f.Billable != nil {
		conds = append(conds, "billable = ?")
		args = append(args, *f.Billable)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		conds = append(conds, "LOWER(description) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEntries(rows *sql.Rows) ([]entry.TimeEntry, error) {
	var out []entry.TimeEntry
	for rows.Next() {
		var e entry.TimeEntry
		var start, end, source, created string
		var edited sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Date, &e.Description, &e.DurationMinutes, &start, &end,
			&e.Billable, &e.Rate, &e.Category, &e.Project, &source, &created, &edited,
		); err != nil {
			return nil, fmt.Errorf("scanning time entry: %w", err)
		}
		var err error
		if e.StartTime, err = duration.ParseClock(start); err != nil {
			return nil, fmt.Errorf("time entry %s start: %w", e.ID, err)
		}
		if e.EndTime, err = duration.ParseClock(end); err != nil {
			return nil, fmt.Errorf("time entry %s end: %w", e.ID, err)
		}
		e.Source = entry.Source(source)
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("time entry %s created_at: %w", e.ID, err)
		}
		if edited.Valid && edited.String != "" {
			t, err := parseTime(edited.String)
			if err != nil {
				return nil, fmt.Errorf("time entry %s edited_at: %w", e.ID, err)
			}
			e.EditedAt = &t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// fallback for RFC3339 without nanos
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, errors.Join(fmt.Errorf("bad timestamp %q", s), err)
	}
	return t, nil
}
