package feed

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultFeeds is the built-in set of market news endpoints, scanned when
// the configuration does not override the list.
var DefaultFeeds = []string{
	"https://feeds.feedburner.com/Techcrunch",
	"https://rss.cnn.com/rss/money_latest.rss",
	"https://feeds.a.dj.com/rss/RSSMarketsMain.xml",
	"https://www.reuters.com/arc/outboundfeeds/newsroom/all/?outputType=xml",
}

// tickerFeedTemplate is the Yahoo Finance per-symbol headline feed.
const tickerFeedTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// maxTickerLen matches the longest plain US exchange symbol.
const maxTickerLen = 5

// SanitizeTicker normalizes a user-supplied stock symbol: surrounding
// whitespace is dropped, letters are upper-cased, and anything past five
// characters is cut off. An all-whitespace input sanitizes to "".
func SanitizeTicker(raw string) string {
	tok := strings.ToUpper(strings.TrimSpace(raw))
	if r := []rune(tok); len(r) > maxTickerLen {
		tok = string(r[:maxTickerLen])
	}
	return tok
}

// TickerFeedURL builds the dynamic headline feed URL for a symbol.
// The second return is false when the sanitized symbol is empty.
func TickerFeedURL(raw string) (string, bool) {
	tok := SanitizeTicker(raw)
	if tok == "" {
		return "", false
	}
	return fmt.Sprintf(tickerFeedTemplate, url.QueryEscape(tok)), true
}

// BuildSourceList merges the static endpoints with at most one
// ticker-derived endpoint. Order is preserved and exact duplicate URLs
// are dropped, first occurrence winning, so the result is usable as a
// cache key and as the fetch batch.
func BuildSourceList(static []string, ticker string) []string {
	out := make([]string, 0, len(static)+1)
	seen := make(map[string]bool, len(static)+1)
	for _, u := range static {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	if u, ok := TickerFeedURL(ticker); ok && !seen[u] {
		out = append(out, u)
	}
	return out
}
