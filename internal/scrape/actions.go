// Package scrape implements the scrape CLI command: fetch one or more seed
// URLs, run the extraction pipeline with pagination, and write the results.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"pagesift/internal/common"
	"pagesift/models"
	"pagesift/pkg/fetcher"
	"pagesift/pkg/output"
	"pagesift/pkg/paginate"
	"pagesift/pkg/pipeline"
	"pagesift/pkg/store"
	"pagesift/pkg/strategy"
)

// job is one seed URL handed to a worker. Each job is an independent run
// owning its own documents and accumulator, so jobs may execute
// concurrently.
type job struct {
	URL string
}

type result struct {
	URL      string
	FilePath string
	Run      *models.RunResult
	Err      error
}

// Action is the scrape command entry point.
func Action(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	urls := splitURLs(c.String("urls"))
	if len(urls) == 0 {
		urls = c.Args().Slice()
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No URLs provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  pagesift scrape --urls "https://example.com/listing"`)
		fmt.Fprintln(os.Stderr, `  pagesift scrape --config selectors.yaml --max-pages 10 https://example.com/jobs`)
		os.Exit(1)
	}

	sanitized, invalid := common.SanitizeAndValidateURLs(urls)
	if len(invalid) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalid))
		for _, bad := range invalid {
			fmt.Fprintf(os.Stderr, "  - %s\n", bad)
		}
		os.Exit(1)
	}

	cfg, err := loadScrapeConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config file", "error", err)
		os.Exit(1)
	}

	roles, err := strategy.ParseRoles(c.String("roles"))
	if err != nil {
		logger.Error("invalid roles spec", "error", err)
		os.Exit(1)
	}

	var selectors *models.ExtractionConfig
	if cfg != nil {
		selectors = cfg.Selectors
	}
	// A malformed selector config is rejected here, before any fetch.
	pipe, err := pipeline.New(selectors, roles, logger)
	if err != nil {
		logger.Error("invalid selector config", "error", err)
		os.Exit(1)
	}

	opts := paginationOptions(c, cfg)
	f := fetcher.New(fetcher.Config{
		Timeout:   c.Duration("timeout"),
		RateLimit: c.Float64("rate"),
	})

	workerCount := c.Int("workers")
	if workerCount <= 0 {
		workerCount = 4
	}
	if workerCount > len(sanitized) {
		workerCount = len(sanitized)
	}

	logger.Info("starting scrape",
		"url_count", len(sanitized),
		"workers", workerCount,
		"max_pages", opts.MaxPages,
		"custom_selectors", selectors != nil)

	results := runAll(c.Context, logger, pipe, f, opts, sanitized, workerCount,
		c.String("output"), c.String("format"))

	var database *store.DB
	if c.IsSet("db") {
		database, err = store.Open(c.String("db"))
		if err != nil {
			logger.Error("failed to open record store", "error", err)
			os.Exit(2)
		}
		defer database.Close()
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("run failed", "url", r.URL, "error", r.Err)
			continue
		}
		if database != nil {
			runID, saveErr := database.SaveRun(r.Run)
			if saveErr != nil {
				logger.Warn("failed to persist run", "url", r.URL, "error", saveErr)
			} else {
				logger.Info("run persisted", "run_id", runID, "db", database.Path())
			}
		}
		if !c.Bool("quiet") {
			fmt.Fprintln(os.Stderr, strings.Repeat("-", 40))
			output.PrintSummary(os.Stderr, r.Run)
			fmt.Fprintf(os.Stderr, "Output:       %s\n", r.FilePath)
		}
	}

	logger.Info("scrape finished",
		"total", len(results),
		"failed", failed,
		"elapsed_s", time.Since(startTime).Seconds())

	if failed == len(results) {
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}

// runAll fans the seed URLs out over a small worker pool. Pages within one
// run stay strictly sequential; only independent runs execute concurrently.
func runAll(ctx context.Context, logger *slog.Logger, pipe *pipeline.Pipeline, f *fetcher.Fetcher, opts paginate.Options, urls []string, workers int, outPath, format string) []result {
	jobs := make(chan job, len(urls))
	out := make(chan result, len(urls))

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range jobs {
				out <- runOne(ctx, id, logger, pipe, f, opts, j.URL, savePath(outPath, format, j.URL, len(urls) > 1), format)
			}
		}(w)
	}
	for _, u := range urls {
		jobs <- job{URL: u}
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]result, 0, len(urls))
	for r := range out {
		results = append(results, r)
	}
	return results
}

func runOne(ctx context.Context, workerID int, logger *slog.Logger, pipe *pipeline.Pipeline, f *fetcher.Fetcher, opts paginate.Options, rawURL, path, format string) result {
	logger.Info("fetching seed page", "worker_id", workerID, "url", rawURL)
	doc, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return result{URL: rawURL, Err: fmt.Errorf("fetch failed: %w", err)}
	}

	run := pipe.Run(ctx, doc, f, opts)
	if err := output.Write(run, path, format); err != nil {
		return result{URL: rawURL, Run: run, Err: fmt.Errorf("write failed: %w", err)}
	}
	logger.Info("run complete",
		"worker_id", workerID,
		"url", rawURL,
		"records", len(run.Records),
		"pages", run.PagesVisited,
		"category", run.Category,
		"stop", run.StopReason)
	return result{URL: rawURL, Run: run, FilePath: path}
}

// savePath picks the output file for one run. A single URL uses the -o flag
// directly; multiple URLs derive a filesystem-friendly name per URL so runs
// do not clobber each other.
func savePath(outPath, format, rawURL string, multi bool) string {
	if !multi {
		if outPath != "" {
			return outPath
		}
		return output.DefaultPath(format)
	}

	dir := ""
	if outPath != "" {
		dir = outPath
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return filepath.Join(dir, output.DefaultPath(format))
	}
	host := strings.ReplaceAll(parsed.Host, ".", "_")
	path := strings.Trim(parsed.Path, "/")
	path = strings.ReplaceAll(path, "/", "-")
	base := host
	if path != "" {
		base = host + "-" + path
	}
	ext := format
	if ext == "" {
		ext = "json"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", base, time.Now().Format("2006-01-02"), ext))
}

// paginationOptions merges CLI flags over the config file; flags win.
func paginationOptions(c *cli.Context, cfg *models.ScrapeConfig) paginate.Options {
	opts := paginate.Options{}
	if cfg != nil {
		opts.MaxPages = cfg.Pagination.MaxPages
		opts.NextSelector = cfg.Pagination.NextSelector
		opts.ContinueOnEmpty = cfg.Pagination.ContinueOnEmpty
	}
	if c.IsSet("max-pages") {
		opts.MaxPages = c.Int("max-pages")
	}
	if c.IsSet("next-selector") {
		opts.NextSelector = c.String("next-selector")
	}
	if c.IsSet("continue-on-empty") {
		opts.ContinueOnEmpty = c.Bool("continue-on-empty")
	}
	return opts
}

// loadScrapeConfig reads a YAML or JSON selector/pagination config file.
func loadScrapeConfig(path string) (*models.ScrapeConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg models.ScrapeConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return &cfg, nil
}

func splitURLs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var urls []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
