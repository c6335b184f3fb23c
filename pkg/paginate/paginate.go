// Package paginate walks a paginated sequence of documents, merging each
// page's records into one run. Pages are processed strictly sequentially:
// a page's next locator is unknown until that page is parsed.
package paginate

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"pagesift/models"
	"pagesift/pkg/dom"
)

// DefaultMaxPages bounds a walk when no explicit ceiling was configured.
// A small bound prevents unbounded crawling on pages whose next control
// never exhausts.
const DefaultMaxPages = 5

// Fetcher is the external fetch collaborator. It must return a fully
// settled Document; wait policy and overlay handling are its concern, not
// the controller's. Failures are surfaced, not retried.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*dom.Document, error)
}

// ExtractFunc runs classification and extraction on one document. The
// controller owns the walk; extraction stays pure and page-local.
type ExtractFunc func(doc *dom.Document) models.PageResult

// Options configure one walk.
type Options struct {
	// MaxPages caps visited documents; zero means DefaultMaxPages.
	MaxPages int
	// NextSelector names the next control explicitly; empty means detected
	// patterns.
	NextSelector string
	// ContinueOnEmpty keeps walking past pages that produced no records
	// while a locator still resolves.
	ContinueOnEmpty bool
}

// Controller drives the walk state machine {Start, Fetching, Merging,
// Stopped}. The run accumulator is owned by the controller alone for the
// run's duration.
type Controller struct {
	fetch   Fetcher
	extract ExtractFunc
	opts    Options
	logger  *slog.Logger
}

// NewController wires a controller. fetch may be nil for single-document
// runs; the walk then stops after the first page.
func NewController(fetch Fetcher, extract ExtractFunc, opts Options, logger *slog.Logger) *Controller {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{fetch: fetch, extract: extract, opts: opts, logger: logger}
}

// Run walks from an already-fetched first document. The accumulated records
// are always returned, including on fetch failure: partial progress is
// never lost.
func (c *Controller) Run(ctx context.Context, first *dom.Document) *models.RunResult {
	run := &models.RunResult{}
	if first.BaseURL() != nil {
		run.URL = first.BaseURL().String()
	}

	doc := first
	prevHash := ""
	for {
		// Merging: extract the current page and append its batch.
		run.PagesVisited++
		page := c.extract(doc)
		run.Records = append(run.Records, page.Records...)
		run.PageCounts = append(run.PageCounts, len(page.Records))
		if run.PagesVisited == 1 {
			run.Category = page.Classification.Category
			run.Confidence = page.Classification.Confidence
		}
		c.logger.Debug("page merged",
			"page", run.PagesVisited,
			"records", len(page.Records),
			"category", page.Classification.Category)

		batchHash := hashBatch(page.Records)

		// Stop checks, in order: ceiling, locator, batch emptiness,
		// stability, cancellation.
		if run.PagesVisited >= c.opts.MaxPages {
			run.StopReason = models.StopCeilingReached
			return run
		}
		next := c.nextLocator(doc)
		if next == "" || c.fetch == nil {
			run.StopReason = models.StopNoNextLocator
			return run
		}
		if len(page.Records) == 0 && !c.opts.ContinueOnEmpty {
			run.StopReason = models.StopEmptyBatch
			return run
		}
		if len(page.Records) > 0 && batchHash == prevHash {
			// A next control that reloads identical content would loop
			// until the ceiling; the duplicate batch is the stop signal.
			run.StopReason = models.StopDuplicatePage
			return run
		}
		prevHash = batchHash

		if err := ctx.Err(); err != nil {
			run.StopReason = models.StopCancelled
			return run
		}

		// Fetching: the only blocking step.
		nextDoc, err := c.fetch.Fetch(ctx, next)
		if err != nil {
			run.StopReason = models.StopFetchFailed
			run.FetchError = err.Error()
			return run
		}
		doc = nextDoc
	}
}

// nextLocator resolves the next-page locator for a document: the explicit
// selector when configured, otherwise detected next-control patterns. The
// controller never guesses URLs.
func (c *Controller) nextLocator(doc *dom.Document) string {
	if c.opts.NextSelector != "" {
		if n := doc.SelectFirst(c.opts.NextSelector); n != nil {
			return resolveHref(doc, n.Attr)
		}
		return ""
	}
	return DetectNext(doc)
}

// nextControlSelectors are the detected next-control patterns, tried in
// order.
var nextControlSelectors = []string{
	"a[rel=next]",
	"link[rel=next]",
	"a[class*=next]",
	"[class*=pagination] a:last-child",
}

// DetectNext finds a next-page locator on the document, or returns "".
func DetectNext(doc *dom.Document) string {
	for _, sel := range nextControlSelectors {
		for _, n := range doc.Select(sel) {
			if href := resolveHref(doc, n.Attr); href != "" {
				return href
			}
		}
	}
	// Anchors whose visible text is a conventional next label.
	for _, a := range doc.Select("a[href]") {
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		switch text {
		case "next", "next page", "older", "›", "»", ">":
			if href := resolveHref(doc, a.Attr); href != "" {
				return href
			}
		}
	}
	return ""
}

func resolveHref(doc *dom.Document, attr func(string) (string, bool)) string {
	href, ok := attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	if base := doc.BaseURL(); base != nil {
		if ref, err := base.Parse(href); err == nil {
			return ref.String()
		}
	}
	return href
}

// hashBatch fingerprints a record batch for the duplicate-page stability
// signal.
func hashBatch(records []*models.Record) string {
	data, err := json.Marshal(records)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
