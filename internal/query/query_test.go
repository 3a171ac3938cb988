package query

import (
	"testing"
	"time"

	"github.com/finwatch/newsscan/internal/feed"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func article(title, publisher string, age time.Duration, s feed.Sentiment, desc string) feed.Article {
	return feed.Article{
		Title:        title,
		URL:          "https://example.com/" + title,
		Publisher:    publisher,
		PublishedUTC: now.Add(-age),
		Description:  desc,
		Sentiment:    s,
	}
}

func sampleSet() []feed.Article {
	return []feed.Article{
		article("Stocks Rally on Strong Growth", "Alpha Wire", 20*time.Minute, feed.SentimentPositive, "Equities climbed."),
		article("Markets Plunge Amid Crisis", "Beta Wire", 10*time.Minute, feed.SentimentNegative, feed.NoDescription),
		article("Fed Holds Rates Steady", "Alpha Wire", 3*time.Hour, feed.SentimentNeutral, "No change expected."),
		article("Old Earnings Recap", "Gamma Journal", 400*24*time.Hour, feed.SentimentNeutral, "From last year."),
	}
}

func titles(articles []feed.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestParseWindow(t *testing.T) {
	cases := []struct {
		in   string
		want Window
	}{
		{"", WindowAll},
		{"all", WindowAll},
		{"24h", Window24h},
		{"4h", Window4h},
		{"1h", Window1h},
		{"30m", Window30m},
		{" 1H ", Window1h},
	}
	for _, c := range cases {
		got, err := ParseWindow(c.in)
		if err != nil {
			t.Errorf("ParseWindow(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseWindow(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseWindow("fortnight"); err == nil {
		t.Error("expected error for unknown window token")
	}
}

func TestParseSentiment(t *testing.T) {
	cases := []struct {
		in   string
		want feed.Sentiment
	}{
		{"positive", feed.SentimentPositive},
		{"Neutral", feed.SentimentNeutral},
		{" NEGATIVE ", feed.SentimentNegative},
	}
	for _, c := range cases {
		got, err := ParseSentiment(c.in)
		if err != nil {
			t.Errorf("ParseSentiment(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseSentiment(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseSentiment("meh"); err == nil {
		t.Error("expected error for unknown sentiment token")
	}
}

func TestApply_WindowFilter(t *testing.T) {
	got, counts := Apply(sampleSet(), Options{Window: Window1h}, now)
	if counts.Window != 2 {
		t.Fatalf("expected 2 articles inside the hour, got %d", counts.Window)
	}
	for _, a := range got {
		if now.Sub(a.PublishedUTC) > time.Hour {
			t.Errorf("article %q is outside the window", a.Title)
		}
	}
}

func TestApply_WindowExcludesOldDatesRegardlessOfOtherFilters(t *testing.T) {
	// An article with a years-old date never survives a 1-hour window,
	// whatever the other filters select.
	opts := Options{
		Window:     Window1h,
		Publishers: []string{"Gamma Journal"},
		Keyword:    "earnings",
	}
	got, _ := Apply(sampleSet(), opts, now)
	if len(got) != 0 {
		t.Fatalf("expected old article excluded by window, got %v", titles(got))
	}
}

func TestApply_PublisherFilter(t *testing.T) {
	got, counts := Apply(sampleSet(), Options{Publishers: []string{"Alpha Wire"}}, now)
	if counts.Publisher != 2 {
		t.Fatalf("expected 2 Alpha Wire articles, got %d", counts.Publisher)
	}
	for _, a := range got {
		if a.Publisher != "Alpha Wire" {
			t.Errorf("unexpected publisher %q", a.Publisher)
		}
	}
}

func TestApply_SentimentFilter(t *testing.T) {
	got, _ := Apply(sampleSet(), Options{Sentiments: []feed.Sentiment{feed.SentimentNegative}}, now)
	if len(got) != 1 || got[0].Title != "Markets Plunge Amid Crisis" {
		t.Fatalf("expected only the negative article, got %v", titles(got))
	}
}

func TestApply_KeywordFilter(t *testing.T) {
	got, _ := Apply(sampleSet(), Options{Keyword: "crisis"}, now)
	if len(got) != 1 || got[0].Title != "Markets Plunge Amid Crisis" {
		t.Fatalf("expected exactly the crisis article, got %v", titles(got))
	}

	// Keyword also matches publisher and description fields.
	got, _ = Apply(sampleSet(), Options{Keyword: "gamma"}, now)
	if len(got) != 1 || got[0].Publisher != "Gamma Journal" {
		t.Fatalf("expected publisher match, got %v", titles(got))
	}
	got, _ = Apply(sampleSet(), Options{Keyword: "climbed"}, now)
	if len(got) != 1 || got[0].Title != "Stocks Rally on Strong Growth" {
		t.Fatalf("expected description match, got %v", titles(got))
	}
}

func TestApply_StagesComposeByIntersection(t *testing.T) {
	set := sampleSet()
	opts := Options{
		Window:     Window24h,
		Publishers: []string{"Alpha Wire", "Beta Wire"},
		Sentiments: []feed.Sentiment{feed.SentimentPositive, feed.SentimentNegative},
		Keyword:    "s",
	}
	got, counts := Apply(set, opts, now)

	// Every filter's independent predicate over the full set must agree
	// with the sequential result.
	var want []string
	for _, a := range set {
		inWindow := now.Sub(a.PublishedUTC) <= 24*time.Hour
		inPub := a.Publisher == "Alpha Wire" || a.Publisher == "Beta Wire"
		inSent := a.Sentiment == feed.SentimentPositive || a.Sentiment == feed.SentimentNegative
		inKw := true // "s" appears in every remaining title
		if inWindow && inPub && inSent && inKw {
			want = append(want, a.Title)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d articles, got %v", len(want), titles(got))
	}

	if counts.Input != 4 || counts.Final != len(got) {
		t.Errorf("inconsistent stage counts: %+v", counts)
	}
	if counts.Window < counts.Publisher || counts.Publisher < counts.Sentiment || counts.Sentiment < counts.Keyword {
		t.Errorf("stage counts must be non-increasing: %+v", counts)
	}
}

func TestApply_SortNewestFirst(t *testing.T) {
	got, _ := Apply(sampleSet(), Options{}, now)
	for i := 1; i < len(got); i++ {
		if got[i-1].PublishedUTC.Before(got[i].PublishedUTC) {
			t.Fatalf("not sorted newest first: %v", titles(got))
		}
	}
	if got[0].Title != "Markets Plunge Amid Crisis" {
		t.Errorf("expected newest article first, got %q", got[0].Title)
	}
}

func TestApply_SortByPublisherStable(t *testing.T) {
	got, _ := Apply(sampleSet(), Options{Sort: SortPublisher}, now)
	for i := 1; i < len(got); i++ {
		if got[i-1].Publisher > got[i].Publisher {
			t.Fatalf("not sorted by publisher: %v", titles(got))
		}
	}

	// The two Alpha Wire articles keep their incoming relative order.
	var alpha []string
	for _, a := range got {
		if a.Publisher == "Alpha Wire" {
			alpha = append(alpha, a.Title)
		}
	}
	if len(alpha) != 2 || alpha[0] != "Stocks Rally on Strong Growth" {
		t.Errorf("stable sort violated for same-publisher articles: %v", alpha)
	}
}

func TestApply_Truncation(t *testing.T) {
	many := make([]feed.Article, MaxResults+50)
	for i := range many {
		many[i] = article("A", "P", time.Minute, feed.SentimentNeutral, "")
	}

	got, counts := Apply(many, Options{}, now)
	if len(got) != MaxResults {
		t.Fatalf("expected cap at %d, got %d", MaxResults, len(got))
	}
	if counts.Keyword != MaxResults+50 || counts.Final != MaxResults {
		t.Errorf("unexpected counts around truncation: %+v", counts)
	}

	got, _ = Apply(sampleSet(), Options{Limit: 2}, now)
	if len(got) != 2 {
		t.Fatalf("expected explicit limit of 2, got %d", len(got))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	set := sampleSet()
	before := titles(set)

	Apply(set, Options{Sort: SortPublisher, Keyword: "x"}, now)

	after := titles(set)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input snapshot mutated: %v -> %v", before, after)
		}
	}
}
