package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flowlog/flowlog/internal/entry"
)

// DayTotal is the tracked time for one calendar day.
type DayTotal struct {
	Date            string  `json:"date"`
	Minutes         int     `json:"minutes"`
	BillableMinutes int     `json:"billable_minutes"`
	Earnings        float64 `json:"earnings"`
	EntryCount      int     `json:"entries"`
}

// CategoryTotal is the tracked time for one category over a range.
type CategoryTotal struct {
	Category   string `json:"category"`
	Minutes    int    `json:"minutes"`
	EntryCount int    `json:"entries"`
}

// BillableSummary rolls up billable versus non-billable time over a range.
type BillableSummary struct {
	BillableMinutes    int     `json:"billable_minutes"`
	NonBillableMinutes int     `json:"non_billable_minutes"`
	BillableEntries    int     `json:"billable_entries"`
	Earnings           float64 `json:"earnings"`
}

// BillableShare is the billable fraction of tracked time, 0 when nothing was tracked.
func (b BillableSummary) BillableShare() float64 {
	total := b.BillableMinutes + b.NonBillableMinutes
	if total == 0 {
		return 0
	}
	return float64(b.BillableMinutes) / float64(total)
}

// LoadDailyTotals returns per-day totals for [from, to], newest first.
func LoadDailyTotals(ctx context.Context, dbh *sql.DB, from, to string) ([]DayTotal, error) {
	rows, err := dbh.QueryContext(ctx, `
		SELECT
			date,
			SUM(duration_minutes),
			SUM(CASE WHEN billable THEN duration_minutes ELSE 0 END),
			SUM(CASE WHEN billable THEN duration_minutes * rate / 60.0 ELSE 0 END),
			COUNT(*)
		FROM time_entries
		WHERE date BETWEEN ? AND ?
		GROUP BY date
		ORDER BY date DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	var out []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Date, &d.Minutes, &d.BillableMinutes, &d.Earnings, &d.EntryCount); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadCategoryTotals returns per-category totals for [from, to], largest first.
func LoadCategoryTotals(ctx context.Context, dbh *sql.DB, from, to string) ([]CategoryTotal, error) {
	rows, err := dbh.QueryContext(ctx, `
		SELECT
			CASE WHEN category = '' THEN 'uncategorized' ELSE category END AS cat,
			SUM(duration_minutes) AS total,
			COUNT(*)
		FROM time_entries
		WHERE date BETWEEN ? AND ?
		GROUP BY cat
		ORDER BY total DESC, cat ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var c CategoryTotal
		if err := rows.Scan(&c.Category, &c.Minutes, &c.EntryCount); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadBillableSummary totals billable time and earnings for [from, to].
func LoadBillableSummary(ctx context.Context, dbh *sql.DB, from, to string) (BillableSummary, error) {
	var b BillableSummary
	err := dbh.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN billable THEN duration_minutes ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN billable THEN 0 ELSE duration_minutes END), 0),
			COALESCE(SUM(CASE WHEN billable THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN billable THEN duration_minutes * rate / 60.0 ELSE 0 END), 0)
		FROM time_entries
		WHERE date BETWEEN ? AND ?
	`, from, to).Scan(&b.BillableMinutes, &b.NonBillableMinutes, &b.BillableEntries, &b.Earnings)
	if err != nil {
		return b, fmt.Errorf("failed to query billable summary: %w", err)
	}
	return b, nil
}

// LoadActiveDays returns the distinct days up to and including upTo that
// have tracked time, newest first.
func LoadActiveDays(ctx context.Context, dbh *sql.DB, upTo string) ([]string, error) {
	rows, err := dbh.QueryContext(ctx, `
		SELECT DISTINCT date FROM time_entries
		WHERE date <= ? AND duration_minutes > 0
		ORDER BY date DESC
	`, upTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query active days: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Streak counts consecutive active days ending today, or ending yesterday
// when nothing has been logged yet today. days must be newest first.
func Streak(days []string, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	cur := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if !set[cur.Format(entry.DateLayout)] {
		cur = cur.AddDate(0, 0, -1)
	}
	n := 0
	for set[cur.Format(entry.DateLayout)] {
		n++
		cur = cur.AddDate(0, 0, -1)
	}
	return n
}
