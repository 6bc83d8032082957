package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB connection to the SQLite store.
type DB struct {
	*sql.DB
}

// NewConnection opens (or creates) the SQLite database at the given path.
// In-memory paths are rewritten to use a shared cache so every connection
// in the pool sees the same database.
func NewConnection(path string) (*DB, error) {
	connStr := path
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; a one-connection pool keeps inserts
	// serialized and keeps in-memory databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return &DB{db}, nil
}
