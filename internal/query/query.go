// Package query filters, sorts and truncates an aggregation snapshot.
// The stages run in a fixed order, each consuming the previous stage's
// output, so the counts displayed between stages line up.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finwatch/newsscan/internal/feed"
)

// MaxResults caps the final output length.
const MaxResults = 1000

// Window is a relative recency cutoff for the first pipeline stage.
type Window int

const (
	WindowAll Window = iota
	Window24h
	Window4h
	Window1h
	Window30m
)

// windowSpans maps each bounded window to its duration. WindowAll has
// no span and never filters.
var windowSpans = map[Window]time.Duration{
	Window24h: 24 * time.Hour,
	Window4h:  4 * time.Hour,
	Window1h:  time.Hour,
	Window30m: 30 * time.Minute,
}

func (w Window) String() string {
	switch w {
	case Window24h:
		return "Last 24 Hours"
	case Window4h:
		return "Last 4 Hours"
	case Window1h:
		return "Last 1 Hour"
	case Window30m:
		return "Last 30 Minutes"
	default:
		return "All Time"
	}
}

// ParseWindow reads a CLI token: all, 24h, 4h, 1h or 30m. The empty
// string means all time.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return WindowAll, nil
	case "24h":
		return Window24h, nil
	case "4h":
		return Window4h, nil
	case "1h":
		return Window1h, nil
	case "30m":
		return Window30m, nil
	}
	return WindowAll, fmt.Errorf("unknown time window %q (use all, 24h, 4h, 1h or 30m)", s)
}

// SortOrder is the single final sort criterion.
type SortOrder int

const (
	SortNewest SortOrder = iota
	SortPublisher
)

// ParseSortOrder reads a CLI token: newest (default) or publisher.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest":
		return SortNewest, nil
	case "publisher":
		return SortPublisher, nil
	}
	return SortNewest, fmt.Errorf("unknown sort order %q (use newest or publisher)", s)
}

// ParseSentiment reads a CLI token into a sentiment bucket.
func ParseSentiment(s string) (feed.Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return feed.SentimentPositive, nil
	case "neutral":
		return feed.SentimentNeutral, nil
	case "negative":
		return feed.SentimentNegative, nil
	}
	return "", fmt.Errorf("unknown sentiment %q (use positive, neutral or negative)", s)
}

// Options selects the pipeline behavior. Empty Publishers or Sentiments
// impose no restriction; an empty Keyword skips the keyword stage; a
// Limit of zero means the MaxResults cap.
type Options struct {
	Window     Window
	Publishers []string
	Sentiments []feed.Sentiment
	Keyword    string
	Sort       SortOrder
	Limit      int
}

// StageCounts records how many articles survived each stage, for the
// between-stage counters shown by the presentation layer.
type StageCounts struct {
	Input     int
	Window    int
	Publisher int
	Sentiment int
	Keyword   int
	Final     int
}

// Apply runs the filter stages in their fixed order (window, publisher,
// sentiment, keyword), then the selected sort and the truncation cap.
// The input snapshot is copied up front and never mutated.
func Apply(articles []feed.Article, opts Options, now time.Time) ([]feed.Article, StageCounts) {
	counts := StageCounts{Input: len(articles)}

	out := make([]feed.Article, len(articles))
	copy(out, articles)

	out = filterWindow(out, opts.Window, now)
	counts.Window = len(out)

	out = filterPublishers(out, opts.Publishers)
	counts.Publisher = len(out)

	out = filterSentiments(out, opts.Sentiments)
	counts.Sentiment = len(out)

	out = filterKeyword(out, opts.Keyword)
	counts.Keyword = len(out)

	sortArticles(out, opts.Sort)

	limit := opts.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	if len(out) > limit {
		out = out[:limit]
	}
	counts.Final = len(out)

	return out, counts
}

func filterWindow(articles []feed.Article, w Window, now time.Time) []feed.Article {
	span, bounded := windowSpans[w]
	if !bounded {
		return articles
	}
	kept := articles[:0]
	for _, a := range articles {
		if now.Sub(a.PublishedUTC) <= span {
			kept = append(kept, a)
		}
	}
	return kept
}

func filterPublishers(articles []feed.Article, publishers []string) []feed.Article {
	if len(publishers) == 0 {
		return articles
	}
	allowed := make(map[string]bool, len(publishers))
	for _, p := range publishers {
		allowed[p] = true
	}
	kept := articles[:0]
	for _, a := range articles {
		if allowed[a.Publisher] {
			kept = append(kept, a)
		}
	}
	return kept
}

func filterSentiments(articles []feed.Article, sentiments []feed.Sentiment) []feed.Article {
	if len(sentiments) == 0 {
		return articles
	}
	allowed := make(map[feed.Sentiment]bool, len(sentiments))
	for _, s := range sentiments {
		allowed[s] = true
	}
	kept := articles[:0]
	for _, a := range articles {
		if allowed[a.Sentiment] {
			kept = append(kept, a)
		}
	}
	return kept
}

func filterKeyword(articles []feed.Article, keyword string) []feed.Article {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return articles
	}
	kept := articles[:0]
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), kw) ||
			strings.Contains(strings.ToLower(a.Publisher), kw) ||
			strings.Contains(strings.ToLower(a.Description), kw) {
			kept = append(kept, a)
		}
	}
	return kept
}

// sortArticles orders newest first by default, or by publisher name
// ascending, compared case-sensitively as stored. Both sorts are stable.
func sortArticles(articles []feed.Article, order SortOrder) {
	switch order {
	case SortPublisher:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].Publisher < articles[j].Publisher
		})
	default:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].PublishedUTC.After(articles[j].PublishedUTC)
		})
	}
}
