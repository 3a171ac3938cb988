// Package metrics exposes Prometheus instrumentation for the scanner.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchTotal counts feed fetches by outcome ("ok" or "error").
	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsscan",
		Name:      "fetch_total",
		Help:      "Feed fetches by outcome",
	}, []string{"status"})

	// FetchDuration tracks wall time of individual feed fetches.
	FetchDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "newsscan",
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching one feed",
	})

	// ArticlesTotal counts articles normalized across all runs.
	ArticlesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "newsscan",
		Name:      "articles_total",
		Help:      "Articles normalized across all runs",
	})

	// CacheLookups counts aggregation cache lookups by result
	// ("hit", "miss" or "expired").
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsscan",
		Name:      "cache_lookups_total",
		Help:      "Aggregation cache lookups by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(FetchTotal, FetchDuration, ArticlesTotal, CacheLookups)
}

// Handler serves the metrics endpoint for watch mode.
func Handler() http.Handler {
	return promhttp.Handler()
}
