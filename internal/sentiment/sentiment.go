// Package sentiment labels article text with a coarse tone bucket using
// fixed finance lexicons. Classification is pure counting with no model
// calls, so identical input always yields the identical label.
package sentiment

import (
	"strings"

	"github.com/finwatch/newsscan/internal/feed"
)

// The lexicons are matched by substring containment over lower-cased
// text, so "downgrade" also hits "downgraded". Entries are kept long
// enough not to fire on unrelated words.
var (
	positiveWords = []string{
		"rally", "surge", "soar", "jump", "record high",
		"growth", "strong", "profit", "beat", "upgrade",
		"bullish", "recover", "boost", "optimism",
	}
	negativeWords = []string{
		"plunge", "crash", "crisis", "slump", "tumble",
		"sink", "decline", "drop", "weak", "loss",
		"recession", "downgrade", "bearish", "selloff",
		"layoff", "warn", "fraud", "bankrupt", "fear",
	}
)

// Classify buckets an article by counting lexicon hits over the
// lower-cased title and description. More positive hits than negative
// yields Positive, the reverse yields Negative, ties (including no hits
// at all) yield Neutral.
func Classify(title, description string) feed.Sentiment {
	text := strings.ToLower(title + " " + description)

	pos := countHits(text, positiveWords)
	neg := countHits(text, negativeWords)

	switch {
	case pos > neg:
		return feed.SentimentPositive
	case neg > pos:
		return feed.SentimentNegative
	default:
		return feed.SentimentNeutral
	}
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(text, w)
	}
	return n
}
