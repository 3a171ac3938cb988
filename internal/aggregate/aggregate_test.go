package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/finwatch/newsscan/internal/feed"
	"github.com/finwatch/newsscan/internal/fetch"
	"github.com/finwatch/newsscan/internal/normalize"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	docs  map[string]*gofeed.Feed
	errs  map[string]error
}

func (f *fakeFetcher) FetchAll(ctx context.Context, urls []string) []fetch.Result {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	out := make([]fetch.Result, len(urls))
	for i, u := range urls {
		out[i] = fetch.Result{URL: u}
		if err, ok := f.errs[u]; ok {
			out[i].Err = err
			continue
		}
		out[i].Doc = f.docs[u]
	}
	return out
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	fetchTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sourceA   = "https://a.example/feed"
	sourceB   = "https://b.example/feed"
)

func twoSourceFetcher() *fakeFetcher {
	return &fakeFetcher{
		docs: map[string]*gofeed.Feed{
			sourceA: {
				Title: "Alpha Wire",
				Items: []*gofeed.Item{{
					Title:       "Stocks Rally on Strong Growth",
					Link:        "https://a.example/1",
					Published:   "Mon, 01 Jan 2024 10:00:00 +0000",
					Description: "Equities climbed across the board.",
				}},
			},
			sourceB: {
				Title: "Beta Wire",
				Items: []*gofeed.Item{{
					Title:     "Markets Plunge Amid Crisis",
					Link:      "https://b.example/1",
					Published: "not a real date",
				}},
			},
		},
	}
}

func newTestService(f *fakeFetcher, clock *fakeClock, ttl time.Duration) *Service {
	norm := normalize.New(0, clock.Now)
	return New(f, norm, ttl, clock.Now, nil)
}

func TestGet_EndToEnd(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	svc := newTestService(twoSourceFetcher(), clock, 0)

	res, err := svc.Get(context.Background(), []string{sourceA, sourceB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(res.Articles))
	}

	// B's date is unparseable so it takes the fetch-time instant, which
	// is later than A's fixed 2024-01-01 date; newest-first puts B first.
	b, a := res.Articles[0], res.Articles[1]
	if b.Title != "Markets Plunge Amid Crisis" {
		t.Fatalf("expected fallback-dated article first, got %q", b.Title)
	}
	if !b.PublishedUTC.Equal(fetchTime) {
		t.Errorf("expected fallback timestamp %v, got %v", fetchTime, b.PublishedUTC)
	}
	if b.Sentiment != feed.SentimentNegative {
		t.Errorf("expected Negative for %q, got %s", b.Title, b.Sentiment)
	}
	if a.Sentiment != feed.SentimentPositive {
		t.Errorf("expected Positive for %q, got %s", a.Title, a.Sentiment)
	}
	if a.Publisher != "Alpha Wire" || b.Publisher != "Beta Wire" {
		t.Errorf("unexpected publishers: %q, %q", a.Publisher, b.Publisher)
	}
	if !res.FetchedAt.Equal(fetchTime) {
		t.Errorf("expected FetchedAt %v, got %v", fetchTime, res.FetchedAt)
	}
}

func TestGet_CacheHitReturnsSameResult(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	fetcher := twoSourceFetcher()
	svc := newTestService(fetcher, clock, 0)
	sources := []string{sourceA, sourceB}

	first, err := svc.Get(context.Background(), sources)
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Minute) // still inside the 600s TTL
	second, err := svc.Get(context.Background(), sources)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the identical cached result on a live hit")
	}
	if fetcher.callCount() != 1 {
		t.Errorf("expected 1 fetch round, got %d", fetcher.callCount())
	}
}

func TestGet_ExpiryTriggersRefetch(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	fetcher := twoSourceFetcher()
	svc := newTestService(fetcher, clock, 0)
	sources := []string{sourceA, sourceB}

	if _, err := svc.Get(context.Background(), sources); err != nil {
		t.Fatal(err)
	}
	clock.Advance(DefaultTTL + time.Second)
	if _, err := svc.Get(context.Background(), sources); err != nil {
		t.Fatal(err)
	}

	if fetcher.callCount() != 2 {
		t.Errorf("expected refetch after expiry, got %d fetch rounds", fetcher.callCount())
	}
}

func TestInvalidateAll(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	fetcher := twoSourceFetcher()
	svc := newTestService(fetcher, clock, 0)
	sources := []string{sourceA, sourceB}

	if _, err := svc.Get(context.Background(), sources); err != nil {
		t.Fatal(err)
	}
	svc.InvalidateAll()
	if _, err := svc.Get(context.Background(), sources); err != nil {
		t.Fatal(err)
	}

	if fetcher.callCount() != 2 {
		t.Errorf("expected refetch after invalidation, got %d fetch rounds", fetcher.callCount())
	}
}

func TestGet_SourceOrderIsPartOfTheKey(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	fetcher := twoSourceFetcher()
	svc := newTestService(fetcher, clock, 0)

	if _, err := svc.Get(context.Background(), []string{sourceA, sourceB}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(context.Background(), []string{sourceB, sourceA}); err != nil {
		t.Fatal(err)
	}

	if fetcher.callCount() != 2 {
		t.Errorf("expected distinct cache entries per ordering, got %d fetch rounds", fetcher.callCount())
	}
}

func TestGet_AllSourcesFailingYieldsEmptyResult(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	fetcher := &fakeFetcher{
		errs: map[string]error{
			sourceA: errors.New("connection refused"),
			sourceB: errors.New("status 503"),
		},
	}
	svc := newTestService(fetcher, clock, 0)

	res, err := svc.Get(context.Background(), []string{sourceA, sourceB})
	if err != nil {
		t.Fatalf("total source failure must not be an error, got: %v", err)
	}
	if len(res.Articles) != 0 {
		t.Errorf("expected empty aggregation, got %d articles", len(res.Articles))
	}
}

func TestGet_CancelledContext(t *testing.T) {
	clock := &fakeClock{now: fetchTime}
	svc := newTestService(twoSourceFetcher(), clock, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Get(ctx, []string{sourceA}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
