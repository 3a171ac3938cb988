// Package render writes articles and pipeline summaries to a terminal.
// It is the presentation layer over the aggregation core: everything a
// user sees comes from here, while operator detail stays in the logs.
package render

import (
	"fmt"
	"io"

	"github.com/finwatch/newsscan/internal/feed"
	"github.com/finwatch/newsscan/internal/query"
)

// NoData is shown when an aggregation yields no articles at all.
const NoData = "Could not load news from any sources. The feeds might be blocking the server."

// maxDescription bounds the description shown on one card.
const maxDescription = 300

// timeLayout formats the published instant on a card.
const timeLayout = "2006-01-02 15:04:05"

// Cards writes one markdown card per article: marker and linked title,
// a publisher and timestamp line, then the truncated description.
func Cards(w io.Writer, articles []feed.Article) {
	for _, a := range articles {
		fmt.Fprintln(w, "---")
		fmt.Fprintf(w, "### %s [%s](%s)\n", Marker(a.Sentiment), a.Title, a.URL)
		fmt.Fprintf(w, "**%s** | *%s*\n", a.Publisher, a.PublishedUTC.Format(timeLayout))
		fmt.Fprintln(w, truncate(a.Description, maxDescription))
	}
}

// StageSummary writes the total line and the per-stage survivor counts
// so a user can see which filter narrowed the set.
func StageSummary(w io.Writer, c query.StageCounts) {
	fmt.Fprintf(w, "Total Articles Found: %d\n", c.Final)
	fmt.Fprintf(w, "Filters: %d fetched | %d in window | %d after publisher | %d after sentiment | %d after keyword\n",
		c.Input, c.Window, c.Publisher, c.Sentiment, c.Keyword)
}

// Marker maps a sentiment bucket to its display emoji.
func Marker(s feed.Sentiment) string {
	switch s {
	case feed.SentimentPositive:
		return "🟢"
	case feed.SentimentNegative:
		return "🔴"
	default:
		return "⚪"
	}
}

// truncate cuts s to at most max runes, ending a shortened string with
// an ellipsis. Counting runes keeps multibyte feed text intact.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
