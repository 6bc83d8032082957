package database

import "time"

// EntryRepository defines the store operations the ingestion pipeline and
// page queries rely on.
type EntryRepository interface {
	Exists(fingerprint string) (bool, error)
	TryInsert(entry Entry) (bool, error)
	GetRange(start time.Time, end *time.Time) ([]Entry, error)
	GetRecent(limit int) ([]Entry, error)
	GetEntryCount() (int, error)
}

// SettingsRepository exposes the key-value settings table. The ingestion
// pipeline itself never touches it.
type SettingsRepository interface {
	GetSetting(key string) (string, error)
	SetSetting(key, val string) error
}
