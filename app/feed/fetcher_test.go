package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/rss-planet/app/config"
)

const testFeedTemplate = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>%s</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>Item</title>
      <link>https://example.com/%s</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, testFeedTemplate, name, name)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchAllSources(t *testing.T) {
	serverA := feedServer(t, "feed-a")
	serverB := feedServer(t, "feed-b")

	fetcher := NewFetcher(NewParser(), &http.Client{}, 2, 5*time.Second, "test-agent")
	feeds, err := fetcher.Run(context.Background(), []config.Source{
		{URL: serverA.URL},
		{URL: serverB.URL},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(feeds) != 2 {
		t.Fatalf("Expected 2 parsed feeds, got: %d", len(feeds))
	}
	for _, parsedFeed := range feeds {
		if len(parsedFeed.Items) != 1 {
			t.Errorf("Expected 1 item per feed, got: %d", len(parsedFeed.Items))
		}
	}
}

func TestFetchIsolatesFailingSource(t *testing.T) {
	healthy := feedServer(t, "healthy")
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	fetcher := NewFetcher(NewParser(), &http.Client{}, 2, 5*time.Second, "test-agent")
	feeds, err := fetcher.Run(context.Background(), []config.Source{
		{URL: healthy.URL},
		{URL: broken.URL},
	})

	if len(feeds) != 1 {
		t.Fatalf("Expected 1 successful feed, got: %d", len(feeds))
	}
	if err == nil {
		t.Error("Expected aggregate error reporting the failed source")
	}
}

func TestFetchTimeoutTreatedAsFailure(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	t.Cleanup(slow.Close)

	healthy := feedServer(t, "healthy")

	fetcher := NewFetcher(NewParser(), &http.Client{}, 2, 100*time.Millisecond, "test-agent")
	feeds, err := fetcher.Run(context.Background(), []config.Source{
		{URL: slow.URL},
		{URL: healthy.URL},
	})

	if len(feeds) != 1 {
		t.Fatalf("Expected slow source to be dropped, got %d feeds", len(feeds))
	}
	if err == nil {
		t.Error("Expected aggregate error for the timed-out source")
	}
}

func TestFetchBoundedConcurrency(t *testing.T) {
	var inFlight, maxInFlight int64
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > maxInFlight {
			maxInFlight = current
		}
		mu.Unlock()
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		fmt.Fprintf(w, testFeedTemplate, "feed", r.URL.Path)
	}))
	t.Cleanup(server.Close)

	sources := make([]config.Source, 8)
	for i := range sources {
		sources[i] = config.Source{URL: fmt.Sprintf("%s/feed-%d", server.URL, i)}
	}

	fetcher := NewFetcher(NewParser(), &http.Client{}, 2, 5*time.Second, "test-agent")
	feeds, err := fetcher.Run(context.Background(), sources)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(feeds) != 8 {
		t.Fatalf("Expected 8 feeds, got: %d", len(feeds))
	}

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight > 2 {
		t.Errorf("Expected at most 2 concurrent fetches, observed %d", maxInFlight)
	}
}

func TestFetchUsesSourceTitleFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title></title>
    <link></link>
    <description>No own title</description>
    <item>
      <title>Item</title>
      <link>https://example.com/item</link>
    </item>
  </channel>
</rss>`)
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(NewParser(), &http.Client{}, 1, 5*time.Second, "test-agent")
	feeds, err := fetcher.Run(context.Background(), []config.Source{
		{URL: server.URL, Title: "Configured Title"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("Expected 1 feed, got: %d", len(feeds))
	}

	if feeds[0].Metadata.Title != "Configured Title" {
		t.Errorf("Expected configured title fallback, got: %s", feeds[0].Metadata.Title)
	}
	if feeds[0].Metadata.Link != server.URL {
		t.Errorf("Expected source URL fallback for site link, got: %s", feeds[0].Metadata.Link)
	}
}
