// Command newsscan is a real-time financial news scanner.
//
// Usage:
//
//	newsscan scan       # fetch all sources once and print the filtered view
//	newsscan watch      # rescan on an interval until interrupted
//	newsscan sources    # list the feed endpoints a scan would fetch
//	newsscan version    # show version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/finwatch/newsscan/internal/aggregate"
	"github.com/finwatch/newsscan/internal/config"
	"github.com/finwatch/newsscan/internal/feed"
	"github.com/finwatch/newsscan/internal/fetch"
	"github.com/finwatch/newsscan/internal/metrics"
	"github.com/finwatch/newsscan/internal/normalize"
	"github.com/finwatch/newsscan/internal/query"
	"github.com/finwatch/newsscan/internal/render"
	"github.com/finwatch/newsscan/internal/schedule"
)

var version = "dev"

// scanTimeout bounds one full scan round from the command line.
const scanTimeout = 90 * time.Second

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsscan",
		Short: "Real-time financial news scanner",
		Long: "Newsscan aggregates a configurable set of financial news feeds, normalizes\n" +
			"the entries, classifies headline sentiment, and prints a filtered, sorted view.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file (default: ./"+config.FileName+", then ~/"+config.FileName+")")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		// Detailed cause goes to the log; stderr stays generic.
		slog.Error("run failed", "error", err)
		fmt.Fprintln(os.Stderr, "A critical error occurred while fetching news.")
		os.Exit(1)
	}
}

// queryFlags are the filter and sort selections shared by scan and watch.
type queryFlags struct {
	window     string
	sortOrder  string
	keyword    string
	publishers []string
	sentiments []string
	limit      int
}

func addQueryFlags(cmd *cobra.Command, f *queryFlags) {
	cmd.Flags().StringVarP(&f.window, "window", "w", "all", "time window: all, 24h, 4h, 1h or 30m")
	cmd.Flags().StringVar(&f.sortOrder, "sort", "newest", "sort order: newest or publisher")
	cmd.Flags().StringVarP(&f.keyword, "keyword", "k", "", "keep only articles mentioning this keyword")
	cmd.Flags().StringSliceVar(&f.publishers, "publisher", nil, "keep only these publishers (repeatable)")
	cmd.Flags().StringSliceVar(&f.sentiments, "sentiment", nil, "keep only these sentiments: positive, neutral, negative (repeatable)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, fmt.Sprintf("maximum articles to print (default %d)", query.MaxResults))
}

func buildQueryOptions(f queryFlags) (query.Options, error) {
	win, err := query.ParseWindow(f.window)
	if err != nil {
		return query.Options{}, err
	}
	order, err := query.ParseSortOrder(f.sortOrder)
	if err != nil {
		return query.Options{}, err
	}
	sentiments := make([]feed.Sentiment, 0, len(f.sentiments))
	for _, raw := range f.sentiments {
		s, err := query.ParseSentiment(raw)
		if err != nil {
			return query.Options{}, err
		}
		sentiments = append(sentiments, s)
	}
	return query.Options{
		Window:     win,
		Publishers: f.publishers,
		Sentiments: sentiments,
		Keyword:    f.keyword,
		Sort:       order,
		Limit:      f.limit,
	}, nil
}

// newService wires the full pipeline from the configuration.
func newService(cfg config.Config) *aggregate.Service {
	client := fetch.NewClient(cfg.Fetch.Timeout)
	var limiter *rate.Limiter
	if cfg.Fetch.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Fetch.RatePerSecond), 1)
	}
	pool := fetch.NewPool(client, cfg.Fetch.Workers, limiter, nil)
	norm := normalize.New(cfg.MaxPerSource, nil)
	return aggregate.New(pool, norm, cfg.CacheTTL, nil, nil)
}

func scanCmd() *cobra.Command {
	var ticker string
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch all sources once and print the filtered articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(ticker, qf)
		},
	}
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "stock symbol; adds a per-symbol headline feed")
	addQueryFlags(cmd, &qf)
	return cmd
}

func runScan(ticker string, qf queryFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts, err := buildQueryOptions(qf)
	if err != nil {
		return err
	}

	sources := feed.BuildSourceList(cfg.Feeds, ticker)
	svc := newService(cfg)

	res, err := svc.Get(ctx, sources)
	if err != nil {
		return fmt.Errorf("aggregate sources: %w", err)
	}
	if len(res.Articles) == 0 {
		fmt.Println(render.NoData)
		return nil
	}

	articles, counts := query.Apply(res.Articles, opts, time.Now().UTC())
	render.StageSummary(os.Stdout, counts)
	render.Cards(os.Stdout, articles)
	return nil
}

func watchCmd() *cobra.Command {
	var ticker string
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rescan on an interval and rerender until interrupted",
		Long: "Watch reruns the scan on the configured interval. Within the cache TTL a\n" +
			"round reuses the cached aggregation; SIGHUP clears the cache so the next\n" +
			"round refetches.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(ticker, qf)
		},
	}
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "stock symbol; adds a per-symbol headline feed")
	addQueryFlags(cmd, &qf)
	return cmd
}

func runWatch(ticker string, qf queryFlags) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts, err := buildQueryOptions(qf)
	if err != nil {
		return err
	}

	sources := feed.BuildSourceList(cfg.Feeds, ticker)
	svc := newService(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown signal received")
		cancel()
	}()

	// SIGHUP drops the cache so the next round refetches instead of
	// waiting out the TTL.
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	go func() {
		for range hupCh {
			svc.InvalidateAll()
		}
	}()

	if cfg.Watch.MetricsAddr != "" {
		go serveMetrics(cfg.Watch.MetricsAddr)
	}

	var prev *aggregate.Result
	sched := schedule.New(nil)
	sched.Add(schedule.Job{Name: "scan", Fn: func(ctx context.Context) error {
		res, err := svc.Get(ctx, sources)
		if err != nil {
			return err
		}

		delta := aggregate.Diff(prev, res)
		prev = res

		fmt.Printf("\n## Scan at %s | %s\n\n", res.FetchedAt.Format("2006-01-02 15:04:05"), delta.Summary())
		if len(res.Articles) == 0 {
			fmt.Println(render.NoData)
			return nil
		}

		articles, counts := query.Apply(res.Articles, opts, time.Now().UTC())
		render.StageSummary(os.Stdout, counts)
		render.Cards(os.Stdout, articles)
		return nil
	}})

	sched.Start(ctx, cfg.Watch.Interval)
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	slog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server failed", "error", err)
	}
}

func sourcesCmd() *cobra.Command {
	var ticker string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the feed endpoints a scan would fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			list := feed.BuildSourceList(cfg.Feeds, ticker)
			fmt.Printf("Sources (%d):\n", len(list))
			for i, u := range list {
				fmt.Printf("  %d. %s\n", i+1, u)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "stock symbol; adds a per-symbol headline feed")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsscan %s\n", version)
		},
	}
}
