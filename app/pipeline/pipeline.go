package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-planet/app/config"
	"github.com/lysyi3m/rss-planet/app/database"
	"github.com/lysyi3m/rss-planet/app/feed"
	"github.com/lysyi3m/rss-planet/app/render"
)

// FetcherInterface is what the pipeline needs from the concurrent fetcher.
type FetcherInterface interface {
	Run(ctx context.Context, sources []config.Source) ([]*feed.ParsedFeed, error)
}

// RendererInterface is the contract to the rendering collaborator: a page
// name, a title, and an ordered entry sequence.
type RendererInterface interface {
	Run(page string, title string, entries []database.Entry) error
}

// ExtractorInterface fetches full content for entries with an empty body.
type ExtractorInterface interface {
	Run(ctx context.Context, pageURL string) (string, error)
}

var _ FetcherInterface = (*feed.Fetcher)(nil)
var _ RendererInterface = (*render.Renderer)(nil)
var _ ExtractorInterface = (*feed.ContentExtractor)(nil)

// Stats summarizes one batch run.
type Stats struct {
	Sources       int
	FetchedFeeds  int
	FailedSources int
	TotalEntries  int
	Invalid       int
	Duplicates    int
	New           int
}

// Pipeline drives one batch run: fetch all sources concurrently, then
// normalize, dedup and persist sequentially, then hand the three page
// windows to the renderer. A fresh Pipeline is built per invocation; it
// keeps no state between runs.
type Pipeline struct {
	fetcher     FetcherInterface
	extractor   ExtractorInterface // nil unless content extraction is enabled
	entryRepo   database.EntryRepository
	renderer    RendererInterface
	latestCount int
	location    *time.Location
}

func NewPipeline(fetcher FetcherInterface, extractor ExtractorInterface,
	entryRepo database.EntryRepository, renderer RendererInterface,
	latestCount int, location *time.Location) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		extractor:   extractor,
		entryRepo:   entryRepo,
		renderer:    renderer,
		latestCount: latestCount,
		location:    location,
	}
}

// Run executes one batch. Per-source and per-entry failures are counted
// and logged; only store failures propagate.
func (p *Pipeline) Run(ctx context.Context, sources []config.Source) (*Stats, error) {
	stats := &Stats{Sources: len(sources)}

	slog.Info("Fetching feeds", "sources", len(sources))

	feeds, fetchErr := p.fetcher.Run(ctx, sources)
	stats.FetchedFeeds = len(feeds)
	stats.FailedSources = len(sources) - len(feeds)
	if fetchErr != nil {
		slog.Warn("Some sources failed", "failed", stats.FailedSources, "error", fetchErr)
	}

	if err := p.ingest(ctx, feeds, stats); err != nil {
		return stats, err
	}

	if err := p.renderPages(); err != nil {
		return stats, err
	}

	slog.Info("Batch run completed",
		"sources", stats.Sources,
		"fetched", stats.FetchedFeeds,
		"failed_sources", stats.FailedSources,
		"entries", stats.TotalEntries,
		"invalid", stats.Invalid,
		"duplicates", stats.Duplicates,
		"new", stats.New)

	return stats, nil
}

// ingest is strictly sequential: the fetch join point above is the only
// concurrency in a batch, so the store sees a single writer.
func (p *Pipeline) ingest(ctx context.Context, feeds []*feed.ParsedFeed, stats *Stats) error {
	for _, parsedFeed := range feeds {
		stats.TotalEntries += len(parsedFeed.Items) + parsedFeed.Invalid
		stats.Invalid += parsedFeed.Invalid

		for _, item := range parsedFeed.Items {
			exists, err := p.entryRepo.Exists(item.Fingerprint)
			if err != nil {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			}
			if exists {
				stats.Duplicates++
				continue
			}

			content := item.Content
			if content == "" && p.extractor != nil {
				extracted, err := p.extractor.Run(ctx, item.URL)
				if err != nil {
					slog.Debug("Content extraction failed", "url", item.URL, "error", err)
				} else {
					content = extracted
				}
			}

			entry := database.Entry{
				URL:         item.URL,
				Fingerprint: item.Fingerprint,
				Title:       item.Title,
				SiteURL:     parsedFeed.Metadata.Link,
				SiteTitle:   parsedFeed.Metadata.Title,
				PublishedAt: item.PublishedAt,
				Content:     content,
			}

			inserted, err := p.entryRepo.TryInsert(entry)
			if err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
			if inserted {
				stats.New++
			} else {
				// Lost the check-then-insert race; the unique index is the
				// authoritative backstop.
				stats.Duplicates++
			}
		}
	}

	return nil
}

func (p *Pipeline) renderPages() error {
	now := time.Now().In(p.location)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.location)
	startOfYesterday := startOfToday.AddDate(0, 0, -1)

	todayEntries, err := p.entryRepo.GetRange(startOfToday, nil)
	if err != nil {
		return fmt.Errorf("failed to query today's entries: %w", err)
	}

	endOfYesterday := startOfToday
	yesterdayEntries, err := p.entryRepo.GetRange(startOfYesterday, &endOfYesterday)
	if err != nil {
		return fmt.Errorf("failed to query yesterday's entries: %w", err)
	}

	latestEntries, err := p.entryRepo.GetRecent(p.latestCount)
	if err != nil {
		return fmt.Errorf("failed to query latest entries: %w", err)
	}

	pages := []struct {
		page    string
		title   string
		entries []database.Entry
	}{
		{"index", "latest", latestEntries},
		{"today", "today", todayEntries},
		{"yesterday", "yesterday", yesterdayEntries},
	}

	for _, pg := range pages {
		if err := p.renderer.Run(pg.page, pg.title, pg.entries); err != nil {
			return err
		}
	}

	return nil
}
