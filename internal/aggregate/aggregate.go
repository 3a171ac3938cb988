// Package aggregate runs the fetch, normalize and classify pipeline for
// a source list and memoizes the result for a bounded time window.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finwatch/newsscan/internal/feed"
	"github.com/finwatch/newsscan/internal/fetch"
	"github.com/finwatch/newsscan/internal/metrics"
	"github.com/finwatch/newsscan/internal/normalize"
	"github.com/finwatch/newsscan/internal/sentiment"
)

// DefaultTTL is how long one aggregation stays valid.
const DefaultTTL = 600 * time.Second

// Fetcher is the batch retrieval dependency, satisfied by fetch.Pool.
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) []fetch.Result
}

// Result is one completed aggregation: articles sorted newest first plus
// the UTC instant the run finished. A Result is never mutated after
// construction; cache hits hand back the same value.
type Result struct {
	ID        string
	Articles  []feed.Article
	FetchedAt time.Time
}

type entry struct {
	result    *Result
	createdAt time.Time
}

// Service coordinates the pipeline behind a TTL cache keyed by the exact
// ordered source list. The clock is injected so expiry is testable.
type Service struct {
	fetcher Fetcher
	norm    *normalize.Normalizer
	ttl     time.Duration
	clock   func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates the aggregation service. Zero ttl falls back to
// DefaultTTL, nil clock to time.Now, nil logger to slog.Default.
func New(fetcher Fetcher, norm *normalize.Normalizer, ttl time.Duration, clock func() time.Time, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		norm:    norm,
		ttl:     ttl,
		clock:   clock,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Get returns the aggregation for the given ordered source list, reusing
// a live cached result when one exists. The mutex is held across the
// recompute so concurrent callers cannot trigger duplicate fetch rounds
// or observe a half-built entry. The error is non-nil only when ctx is
// done; a run where every source fails still returns an empty Result.
func (s *Service) Get(ctx context.Context, sources []string) (*Result, error) {
	key := cacheKey(sources)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if s.clock().Sub(e.createdAt) <= s.ttl {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			s.logger.Debug("aggregation cache hit", "id", e.result.ID, "articles", len(e.result.Articles))
			return e.result, nil
		}
		metrics.CacheLookups.WithLabelValues("expired").Inc()
		delete(s.entries, key)
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	res, err := s.recompute(ctx, sources)
	if err != nil {
		return nil, err
	}
	s.entries[key] = &entry{result: res, createdAt: s.clock()}
	return res, nil
}

// InvalidateAll drops every cached aggregation; the next Get for any
// source list refetches.
func (s *Service) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	s.logger.Info("aggregation cache cleared")
}

func (s *Service) recompute(ctx context.Context, sources []string) (*Result, error) {
	results := s.fetcher.FetchAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var articles []feed.Article
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		for _, art := range s.norm.Document(r.Doc) {
			art.Sentiment = sentiment.Classify(art.Title, art.Description)
			articles = append(articles, art)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedUTC.After(articles[j].PublishedUTC)
	})

	res := &Result{
		ID:        uuid.NewString()[:8],
		Articles:  articles,
		FetchedAt: s.clock().UTC(),
	}
	metrics.ArticlesTotal.Add(float64(len(articles)))
	s.logger.Info("aggregation complete",
		"id", res.ID, "sources", len(sources), "failed", failed, "articles", len(articles))
	return res, nil
}

// cacheKey joins the ordered source list; source order is part of the
// key, so reordered lists cache separately.
func cacheKey(sources []string) string {
	return strings.Join(sources, "\n")
}
