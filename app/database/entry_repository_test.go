package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestTryInsertAndExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	entry := Entry{
		URL:         "https://example.com/post-1",
		Fingerprint: "abc123",
		Title:       "Post 1",
		SiteURL:     "https://example.com",
		SiteTitle:   "Example Blog",
		PublishedAt: time.Now().UTC(),
		Content:     "Hello",
	}

	exists, err := repo.Exists(entry.Fingerprint)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("Expected fingerprint to be absent before insert")
	}

	inserted, err := repo.TryInsert(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("Expected first insert to report Inserted")
	}

	exists, err = repo.Exists(entry.Fingerprint)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("Expected fingerprint to be present after insert")
	}
}

func TestTryInsertDuplicateFingerprint(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	entry := Entry{
		URL:         "https://example.com/post-1",
		Fingerprint: "abc123",
		Title:       "Post 1",
		PublishedAt: time.Now().UTC(),
	}

	if _, err := repo.TryInsert(entry); err != nil {
		t.Fatal(err)
	}

	// Same fingerprint, different surrogate id: must be ignored, not fail.
	entry.Title = "Post 1 (again)"
	inserted, err := repo.TryInsert(entry)
	if err != nil {
		t.Fatalf("Duplicate insert should not error, got: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to report AlreadyExists")
	}

	count, err := repo.GetEntryCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 entry after duplicate insert, got %d", count)
	}
}

func TestGetRangeWindows(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	startOfToday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	startOfYesterday := startOfToday.AddDate(0, 0, -1)

	entries := []Entry{
		{URL: "https://example.com/today", Fingerprint: "f-today", PublishedAt: now},
		{URL: "https://example.com/yesterday", Fingerprint: "f-yesterday", PublishedAt: now.AddDate(0, 0, -1)},
		{URL: "https://example.com/older", Fingerprint: "f-older", PublishedAt: now.AddDate(0, 0, -2)},
	}
	for _, entry := range entries {
		if _, err := repo.TryInsert(entry); err != nil {
			t.Fatal(err)
		}
	}

	today, err := repo.GetRange(startOfToday, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 1 || today[0].Fingerprint != "f-today" {
		t.Errorf("Expected only today's entry, got %d entries", len(today))
	}

	yesterday, err := repo.GetRange(startOfYesterday, &startOfToday)
	if err != nil {
		t.Fatal(err)
	}
	if len(yesterday) != 1 || yesterday[0].Fingerprint != "f-yesterday" {
		t.Errorf("Expected only yesterday's entry, got %d entries", len(yesterday))
	}
}

func TestGetRecentOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := Entry{
			URL:         "https://example.com/post-" + string(rune('a'+i)),
			Fingerprint: "fp-" + string(rune('a'+i)),
			PublishedAt: base.AddDate(0, 0, i),
		}
		if _, err := repo.TryInsert(entry); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.GetRecent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].PublishedAt.After(recent[i-1].PublishedAt) {
			t.Error("Expected entries ordered descending by published_at")
		}
	}
	if recent[0].Fingerprint != "fp-e" {
		t.Errorf("Expected newest entry first, got %s", recent[0].Fingerprint)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewEntryRepository(db)

	entry := Entry{
		URL:         "https://example.com/post-1",
		Fingerprint: "abc123",
		PublishedAt: time.Now().UTC(),
	}
	if _, err := repo.TryInsert(entry); err != nil {
		t.Fatal(err)
	}

	// Second run must be a no-op and preserve existing rows.
	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Re-running migrations should be a no-op, got: %v", err)
	}

	count, err := repo.GetEntryCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 entry after re-migration, got %d", count)
	}
}

func TestSettingsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	val, err := repo.GetSetting("last_run_at")
	if err != nil {
		t.Fatal(err)
	}
	if val != "" {
		t.Errorf("Expected empty value for unset key, got %q", val)
	}

	if err := repo.SetSetting("last_run_at", "2026-08-30T12:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetSetting("last_run_at", "2026-08-30T13:00:00Z"); err != nil {
		t.Fatal(err)
	}

	val, err = repo.GetSetting("last_run_at")
	if err != nil {
		t.Fatal(err)
	}
	if val != "2026-08-30T13:00:00Z" {
		t.Errorf("Expected updated value, got %q", val)
	}
}
