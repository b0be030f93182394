package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SuggestField names a free-text entry column that autocompletion draws from.
type SuggestField string

const (
	SuggestCategory SuggestField = "category"
	SuggestProject  SuggestField = "project"
)

// Suggest returns previously used values of field that start with prefix,
// most used first.
func Suggest(ctx context.Context, dbh *sql.DB, field SuggestField, prefix string, limit int) ([]string, error) {
	switch field {
	case SuggestCategory, SuggestProject:
	default:
		return nil, fmt.Errorf("unknown suggestion field %q", field)
	}
	if limit <= 0 {
		limit = 5
	}
	col := string(field)
	rows, err := dbh.QueryContext(ctx, `
		SELECT `+col+`, COUNT(*) AS uses
		FROM time_entries
		WHERE `+col+` <> '' AND LOWER(`+col+`) LIKE ?
		GROUP BY `+col+`
		ORDER BY uses DESC, `+col+` ASC
		LIMIT ?
	`, strings.ToLower(strings.TrimSpace(prefix))+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s suggestions: %w", col, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		var uses int
		if err := rows.Scan(&v, &uses); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
