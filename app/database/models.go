package database

import (
	"time"
)

// Entry is the canonical, persisted form of a feed entry. Entries are
// immutable after insertion: there is no update or delete path.
type Entry struct {
	ID          string // Surrogate UUID, assigned by the repository on insert
	URL         string // The entry's canonical link, never empty
	Fingerprint string // sha256 hex digest of URL, unique across the store
	Title       string
	SiteURL     string // Homepage URL of the owning feed
	SiteTitle   string // Title of the owning feed
	PublishedAt time.Time // Stored in UTC
	Content     string
	CreatedAt   time.Time
}
