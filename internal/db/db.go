package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

func appDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	base := filepath.Join(home, ".local", "share", "flowlog")
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return base, nil
}

// DefaultPath is where Open keeps the database. FLOWLOG_DB overrides it.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("FLOWLOG_DB")); p != "" {
		return p, nil
	}
	dir, err := appDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flowlog.db"), nil
}

// Open opens the database at DefaultPath.
func Open() (*sql.DB, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens (and migrates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenPath(path string) (*sql.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
		dsn = fmt.Sprintf(
			"file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
			path,
		)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := EnsureEntryColumns(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Join(fmt.Errorf("schema apply failed"), err)
	}
	return nil
}

// ------------------------------
// Columns added after the first release (idempotent upgrader)
// ------------------------------

var entryColumns = []struct {
	name string
	ddl  string
}{
	{"project", `ALTER TABLE time_entries ADD COLUMN project TEXT NOT NULL DEFAULT ''`},
	{"edited_at", `ALTER TABLE time_entries ADD COLUMN edited_at TEXT`},
}

func EnsureEntryColumns(db *sql.DB) error {
	have := map[string]bool{}

	rows, err := db.Query(`PRAGMA table_info(time_entries)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		have[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range entryColumns {
		if have[c.name] {
			continue
		}
		if _, err := tx.Exec(c.ddl); err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_time_entries_project ON time_entries(project)`); err != nil {
		return err
	}
	return tx.Commit()
}
