// Package feed defines the canonical article model and the source list
// construction used by the scanner.
package feed

import "time"

// Sentiment is the coarse tone bucket assigned to an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// AllSentiments lists every bucket in display order.
var AllSentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// UnknownPublisher is used when a feed document carries no title.
const UnknownPublisher = "Unknown Source"

// NoDescription is used when an entry has neither summary nor content.
const NoDescription = "No description available"

// Article is one normalized feed entry. Values are immutable once built;
// PublishedUTC always carries the UTC location so window filtering and
// sorting never compare mixed-zone instants.
type Article struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Publisher    string    `json:"publisher"`
	PublishedUTC time.Time `json:"published_utc"`
	Description  string    `json:"description"`
	Sentiment    Sentiment `json:"sentiment"`
}
