// Package normalize converts raw feed documents into canonical articles:
// description fallback resolution, markup cleaning, and tolerant
// publication date repair.
package normalize

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/finwatch/newsscan/internal/feed"
	"github.com/finwatch/newsscan/pkg/htmltext"
)

// DefaultMaxPerSource bounds processed entries per feed.
const DefaultMaxPerSource = 300

// Published date layouts, tried in order. The second carries no offset
// and is read as UTC.
const (
	layoutOffset   = time.RFC1123Z // "Mon, 02 Jan 2006 15:04:05 -0700"
	layoutNoOffset = "Mon, 02 Jan 2006 15:04:05"
)

// Normalizer builds Articles from raw feed documents. The clock is
// injected so the date fallback is testable.
type Normalizer struct {
	clock        func() time.Time
	maxPerSource int
}

// New creates a Normalizer. A non-positive cap falls back to
// DefaultMaxPerSource, a nil clock to time.Now.
func New(maxPerSource int, clock func() time.Time) *Normalizer {
	if maxPerSource <= 0 {
		maxPerSource = DefaultMaxPerSource
	}
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{clock: clock, maxPerSource: maxPerSource}
}

// Document converts one fetched feed document into articles. A nil
// document (a failed source) yields no articles. Sentiment is left for
// the caller to assign.
func (n *Normalizer) Document(doc *gofeed.Feed) []feed.Article {
	if doc == nil || len(doc.Items) == 0 {
		return nil
	}

	publisher := strings.TrimSpace(doc.Title)
	if publisher == "" {
		publisher = feed.UnknownPublisher
	}

	items := doc.Items
	if len(items) > n.maxPerSource {
		items = items[:n.maxPerSource]
	}

	articles := make([]feed.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, feed.Article{
			Title:        strings.TrimSpace(item.Title),
			URL:          item.Link,
			Publisher:    publisher,
			PublishedUTC: n.resolvePublished(item.Published),
			Description:  resolveDescription(item),
		})
	}
	return articles
}

// resolveDescription picks the first usable text field: the summary,
// then the content block, then the fixed placeholder. The chosen field
// is cleaned of markup; a field that cleans down to nothing counts as
// absent.
func resolveDescription(item *gofeed.Item) string {
	for _, candidate := range []string{item.Description, item.Content} {
		if text := htmltext.Clean(candidate); text != "" {
			return text
		}
	}
	return feed.NoDescription
}

// resolvePublished repairs the raw published string into a UTC instant,
// falling back to the current clock reading when unparseable.
func (n *Normalizer) resolvePublished(raw string) time.Time {
	if ts, ok := parsePublished(raw); ok {
		return ts
	}
	return n.clock().UTC()
}

// parsePublished tries the two strict layouts in order. A match parsed
// with a non-UTC offset is converted to UTC, not relabeled.
func parsePublished(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(layoutOffset, raw); err == nil {
		return ts.UTC(), true
	}
	if ts, err := time.Parse(layoutNoOffset, raw); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}
