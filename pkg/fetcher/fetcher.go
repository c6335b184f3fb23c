// Package fetcher is the HTTP fetch collaborator: it retrieves a page and
// hands the engine a settled Document. Browser rendering, wait tuning and
// overlay dismissal are out of scope here; pages requiring them need a
// different Fetcher implementation behind the same interface.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"pagesift/pkg/dom"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 2 // requests per second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Fetcher retrieves pages over plain HTTP with a shared rate limiter.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Config tunes a Fetcher. Zero values take the package defaults.
type Config struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	UserAgent string
}

// New builds a Fetcher from config.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		userAgent: cfg.UserAgent,
	}
}

// Fetch retrieves the URL and parses it into a Document whose base URL is
// the final URL after redirects.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*dom.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status code %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return dom.Parse(string(body), finalURL)
}
