package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	"github.com/lysyi3m/rss-planet/app/config"
)

// Requests across all workers share one limiter so a large feed list does
// not hammer a single host burst-style.
const (
	fetchRatePerSecond = 4
	fetchRateBurst     = 8
)

// Fetcher retrieves and parses feed sources concurrently through a bounded
// worker pool. One source's failure never aborts the others.
type Fetcher struct {
	parser      *Parser
	httpClient  *http.Client
	limiter     *rate.Limiter
	userAgent   string
	timeout     time.Duration
	workerCount int
}

func NewFetcher(parser *Parser, httpClient *http.Client, workerCount int, timeout time.Duration, userAgent string) *Fetcher {
	if workerCount < 1 {
		workerCount = 1
	}

	return &Fetcher{
		parser:      parser,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(fetchRatePerSecond), fetchRateBurst),
		userAgent:   userAgent,
		timeout:     timeout,
		workerCount: workerCount,
	}
}

// Run fetches all sources and returns the successfully parsed feeds in no
// particular order. Per-source failures are aggregated into the returned
// error; callers treat it as a report, not a reason to abort.
func (f *Fetcher) Run(ctx context.Context, sources []config.Source) ([]*ParsedFeed, error) {
	jobs := make(chan config.Source)

	var (
		mu    sync.Mutex
		feeds []*ParsedFeed
		errs  *multierror.Error
	)

	var wg sync.WaitGroup
	for i := 0; i < f.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				parsedFeed, err := f.fetchSource(ctx, source)

				mu.Lock()
				if err != nil {
					errs = multierror.Append(errs, fmt.Errorf("%s: %w", source.URL, err))
					slog.Warn("Feed fetch failed", "url", source.URL, "error", err)
				} else {
					feeds = append(feeds, parsedFeed)
					slog.Debug("Feed fetched", "url", source.URL, "entries", len(parsedFeed.Items))
				}
				mu.Unlock()
			}
		}()
	}

enqueue:
	for _, source := range sources {
		select {
		case jobs <- source:
		case <-ctx.Done():
			// Remaining sources are skipped; in-flight fetches fail fast
			// through their request contexts.
			break enqueue
		}
	}
	close(jobs)

	wg.Wait()

	return feeds, errs.ErrorOrNil()
}

func (f *Fetcher) fetchSource(ctx context.Context, source config.Source) (*ParsedFeed, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	parsedFeed, err := f.parser.Run(data)
	if err != nil {
		return nil, err
	}

	parsedFeed.Source = source
	if parsedFeed.Metadata.Title == "" {
		parsedFeed.Metadata.Title = source.Title
	}
	if parsedFeed.Metadata.Link == "" {
		parsedFeed.Metadata.Link = source.URL
	}

	return parsedFeed, nil
}
