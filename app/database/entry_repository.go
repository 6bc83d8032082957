package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ EntryRepository = (*EntryRepo)(nil)

// EntryRepo handles database operations for stored entries.
type EntryRepo struct {
	db *DB
}

func NewEntryRepository(db *DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// Exists performs a point lookup against the unique fingerprint index.
func (r *EntryRepo) Exists(fingerprint string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM entries WHERE fingerprint = ? LIMIT 1`, fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return true, nil
}

// TryInsert stores an entry, assigning a surrogate UUID. A fingerprint
// collision is an expected outcome, not an error: the method reports
// (false, nil) and leaves the existing row untouched.
func (r *EntryRepo) TryInsert(entry Entry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO entries (
			id, url, fingerprint, title, site_url, site_title, published_at, content, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.URL, entry.Fingerprint, entry.Title,
		entry.SiteURL, entry.SiteTitle, entry.PublishedAt.UTC(), entry.Content, entry.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// GetRange returns entries with start <= published_at < end, newest first.
// A nil end leaves the window open-ended.
func (r *EntryRepo) GetRange(start time.Time, end *time.Time) ([]Entry, error) {
	query := `
		SELECT id, url, fingerprint, title, site_url, site_title, published_at, content, created_at
		FROM entries
		WHERE published_at >= ?`
	args := []any{start.UTC()}

	if end != nil {
		query += ` AND published_at < ?`
		args = append(args, end.UTC())
	}

	query += ` ORDER BY published_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries in range: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetRecent returns up to limit entries, newest first, with no time filter.
func (r *EntryRepo) GetRecent(limit int) ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT id, url, fingerprint, title, site_url, site_title, published_at, content, created_at
		FROM entries
		ORDER BY published_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetEntryCount returns the total number of stored entries.
func (r *EntryRepo) GetEntryCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get entry count: %w", err)
	}
	return count, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID, &entry.URL, &entry.Fingerprint, &entry.Title,
			&entry.SiteURL, &entry.SiteTitle, &entry.PublishedAt,
			&entry.Content, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	return entries, nil
}
