package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/finwatch/newsscan/internal/metrics"
)

// DefaultWorkers is the fan-out width of a fetch batch.
const DefaultWorkers = 5

// Pool fans fetches out over a fixed number of workers.
type Pool struct {
	client  *Client
	workers int
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewPool creates a pool around the given client. A non-positive worker
// count falls back to DefaultWorkers. The limiter is optional; when set
// it paces requests across all workers.
func NewPool(client *Client, workers int, limiter *rate.Limiter, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{client: client, workers: workers, limiter: limiter, logger: logger}
}

// FetchAll retrieves every URL with at most the configured number of
// requests in flight. The returned slice is parallel to urls: index i
// holds the outcome for urls[i] no matter what order workers finish in.
// A failed source yields a Result with a nil Doc; the batch itself never
// fails.
func (p *Pool) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(urls) {
		workers = len(urls)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			// Each worker writes only its own result slots, so the
			// collection needs no lock.
			for i := range jobs {
				results[i] = p.fetchOne(ctx, urls[i])
			}
		}()
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *Pool) fetchOne(ctx context.Context, url string) Result {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Result{URL: url, Err: err}
		}
	}

	start := time.Now()
	doc, err := p.client.Fetch(ctx, url)
	elapsed := time.Since(start)

	metrics.FetchDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.FetchTotal.WithLabelValues("error").Inc()
		p.logger.Warn("source fetch failed", "url", url, "error", err, "duration", elapsed)
		return Result{URL: url, Err: err, Elapsed: elapsed}
	}

	metrics.FetchTotal.WithLabelValues("ok").Inc()
	p.logger.Debug("source fetched", "url", url, "items", len(doc.Items), "duration", elapsed)
	return Result{URL: url, Doc: doc, Elapsed: elapsed}
}
