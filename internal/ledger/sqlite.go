package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobhound/internal/model"
)

// Ensure SQLiteLedger implements model.Ledger.
var _ model.Ledger = (*SQLiteLedger)(nil)

// SQLiteLedger is an alternative ledger backend. Same contract as the CSV
// file, backed by an embedded database (url is the primary key, inserts are
// idempotent).
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dbPath and ensures the
// seen_jobs table exists.
func OpenSQLite(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite ledger: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite ledger: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_jobs (
		url         TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		company     TEXT NOT NULL DEFAULT '',
		observed_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_jobs table: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Contains reports whether the URL has already been recorded.
func (l *SQLiteLedger) Contains(url string) (bool, error) {
	var exists int
	err := l.db.QueryRow("SELECT 1 FROM seen_jobs WHERE url = ?", url).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking ledger for %s: %w", url, err)
	}
	return true, nil
}

// Append records the entry. A duplicate URL is a no-op.
func (l *SQLiteLedger) Append(e model.Entry) error {
	_, err := l.db.Exec(
		"INSERT OR IGNORE INTO seen_jobs (url, title, company, observed_at) VALUES (?, ?, ?, ?)",
		e.URL, e.Title, e.Company, e.ObservedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending %s to ledger: %w", e.URL, err)
	}
	return nil
}

// Count returns the total number of recorded entries.
func (l *SQLiteLedger) Count() (int, error) {
	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM seen_jobs").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting ledger entries: %w", err)
	}
	return count, nil
}

// Entries returns every entry in append order.
func (l *SQLiteLedger) Entries() ([]model.Entry, error) {
	rows, err := l.db.Query("SELECT url, title, company, observed_at FROM seen_jobs ORDER BY observed_at, url")
	if err != nil {
		return nil, fmt.Errorf("reading ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		var observedAt string
		if err := rows.Scan(&e.URL, &e.Title, &e.Company, &observedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		e.ObservedAt, _ = time.Parse(time.RFC3339, observedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
