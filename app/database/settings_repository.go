package database

import (
	"database/sql"
	"fmt"
)

var _ SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo handles the key-value settings table.
type SettingsRepo struct {
	db *DB
}

func NewSettingsRepository(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetSetting returns the value for a key, or an empty string when unset.
func (r *SettingsRepo) GetSetting(key string) (string, error) {
	var val sql.NullString
	err := r.db.QueryRow(`SELECT val FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return val.String, nil
}

func (r *SettingsRepo) SetSetting(key, val string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, val) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET val = excluded.val
	`, key, val)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}
