package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ErrMissingLink marks a raw entry that cannot be fingerprinted. Such
// entries are skipped, never fatal to the batch.
var ErrMissingLink = errors.New("entry has no link")

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed bytes and normalizes every entry. Entries without a
// usable link are dropped and counted; their siblings are unaffected.
func (p *Parser) Run(data []byte) (*ParsedFeed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &ParsedFeed{
		Metadata: Metadata{
			Title: parsed.Title,
			Link:  parsed.Link,
		},
	}

	result.Items = make([]Item, 0, len(parsed.Items))
	for _, rawItem := range parsed.Items {
		item, err := p.normalizeItem(rawItem)
		if err != nil {
			result.Invalid++
			slog.Debug("Skipping invalid entry", "feed", parsed.Title, "title", rawItem.Title, "error", err)
			continue
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func (p *Parser) normalizeItem(rawItem *gofeed.Item) (Item, error) {
	link := strings.TrimSpace(rawItem.Link)
	if link == "" {
		return Item{}, ErrMissingLink
	}

	item := Item{
		URL:         link,
		Fingerprint: Fingerprint(link),
		Title:       rawItem.Title,
		// A feed may carry full content, only a summary, or neither; an
		// entry with an empty body is still valid.
		Content: cmp.Or(rawItem.Content, rawItem.Description),
	}

	switch {
	case rawItem.PublishedParsed != nil:
		item.PublishedAt = rawItem.PublishedParsed.UTC()
	case rawItem.UpdatedParsed != nil:
		item.PublishedAt = rawItem.UpdatedParsed.UTC()
	default:
		item.PublishedAt = time.Now().UTC()
	}

	return item, nil
}

// Fingerprint returns the dedup key for an entry URL: the sha256 digest of
// the UTF-8 string as lowercase hex. Deterministic and pure; recomputing it
// for the same URL always yields the same value.
func Fingerprint(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])
}
