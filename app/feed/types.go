package feed

import (
	"time"

	"github.com/lysyi3m/rss-planet/app/config"
)

// Metadata carries feed-level attributes denormalized onto every entry.
type Metadata struct {
	Title string
	Link  string
}

// Item is a normalized feed entry, ready for dedup and persistence.
type Item struct {
	URL         string
	Fingerprint string
	Title       string
	Content     string
	PublishedAt time.Time
}

// ParsedFeed pairs feed-level metadata with the normalized entries of one
// fetched source. Invalid counts entries dropped for having no link.
type ParsedFeed struct {
	Source   config.Source
	Metadata Metadata
	Items    []Item
	Invalid  int
}
