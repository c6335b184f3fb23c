package paginate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pagesift/models"
	"pagesift/pkg/dom"
)

// fakeFetcher serves scripted pages by locator and records every call.
type fakeFetcher struct {
	pages map[string]string
	calls []string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, locator string) (*dom.Document, error) {
	f.calls = append(f.calls, locator)
	if f.err != nil {
		return nil, f.err
	}
	html, ok := f.pages[locator]
	if !ok {
		return nil, fmt.Errorf("no page for %s", locator)
	}
	return dom.Parse(html, locator)
}

// itemExtract emits one record per li element, simulating a list strategy.
func itemExtract(doc *dom.Document) models.PageResult {
	result := models.PageResult{
		Classification: models.Classification{Category: models.CategoryList, Confidence: 0.8},
	}
	for _, li := range doc.Select("li") {
		rec := models.NewRecord()
		rec.Set("text", strings.TrimSpace(li.Text()))
		result.Records = append(result.Records, rec)
	}
	return result
}

// listingPage builds a page with the given items and an optional next link.
func listingPage(next string, items ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, item := range items {
		b.WriteString("<li>" + item + "</li>")
	}
	b.WriteString("</ul>")
	if next != "" {
		b.WriteString(`<a rel="next" href="` + next + `">Next</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func mustParse(t *testing.T, html, base string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(html, base)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestRun_CeilingReached(t *testing.T) {
	// Every page links onward; the walk must stop at exactly MaxPages with
	// MaxPages-1 collaborator fetches.
	fetch := &fakeFetcher{pages: map[string]string{
		"https://example.com/p2": listingPage("https://example.com/p3", "c", "d"),
		"https://example.com/p3": listingPage("https://example.com/p4", "e", "f"),
		"https://example.com/p4": listingPage("", "never fetched"),
	}}
	first := mustParse(t, listingPage("https://example.com/p2", "a", "b"), "https://example.com/p1")

	c := NewController(fetch, itemExtract, Options{MaxPages: 3}, nil)
	run := c.Run(context.Background(), first)

	if run.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", run.PagesVisited)
	}
	if len(fetch.calls) != 2 {
		t.Errorf("fetch calls = %d, want 2", len(fetch.calls))
	}
	if run.StopReason != models.StopCeilingReached {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopCeilingReached)
	}
	if len(run.Records) != 6 {
		t.Errorf("Records = %d, want 6", len(run.Records))
	}
	wantCounts := []int{2, 2, 2}
	if len(run.PageCounts) != 3 || run.PageCounts[0] != 2 {
		t.Errorf("PageCounts = %v, want %v", run.PageCounts, wantCounts)
	}
	if run.Category != models.CategoryList {
		t.Errorf("Category = %s, want list (first page's classification)", run.Category)
	}
}

func TestRun_NoNextLocator(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{}}
	first := mustParse(t, listingPage("", "a", "b"), "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{}, nil).Run(context.Background(), first)

	if run.StopReason != models.StopNoNextLocator {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopNoNextLocator)
	}
	if run.PagesVisited != 1 {
		t.Errorf("PagesVisited = %d, want 1", run.PagesVisited)
	}
	if len(fetch.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0", len(fetch.calls))
	}
}

func TestRun_NilFetcherStopsAfterFirstPage(t *testing.T) {
	first := mustParse(t, listingPage("https://example.com/p2", "a"), "https://example.com/p1")
	run := NewController(nil, itemExtract, Options{}, nil).Run(context.Background(), first)

	if run.PagesVisited != 1 {
		t.Errorf("PagesVisited = %d, want 1", run.PagesVisited)
	}
	if run.StopReason != models.StopNoNextLocator {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopNoNextLocator)
	}
}

func TestRun_EmptyBatchStops(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		"https://example.com/p2": listingPage("", "never reached"),
	}}
	first := mustParse(t, listingPage("https://example.com/p2"), "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{}, nil).Run(context.Background(), first)

	if run.StopReason != models.StopEmptyBatch {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopEmptyBatch)
	}
	if len(fetch.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0", len(fetch.calls))
	}
}

func TestRun_ContinueOnEmpty(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		"https://example.com/p2": listingPage("", "a", "b"),
	}}
	first := mustParse(t, listingPage("https://example.com/p2"), "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{ContinueOnEmpty: true}, nil).Run(context.Background(), first)

	if run.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", run.PagesVisited)
	}
	if len(run.Records) != 2 {
		t.Errorf("Records = %d, want 2", len(run.Records))
	}
	if run.StopReason != models.StopNoNextLocator {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopNoNextLocator)
	}
}

func TestRun_FetchFailureKeepsPartialResults(t *testing.T) {
	fetch := &fakeFetcher{err: errors.New("connection refused")}
	first := mustParse(t, listingPage("https://example.com/p2", "a", "b"), "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{}, nil).Run(context.Background(), first)

	if run.StopReason != models.StopFetchFailed {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopFetchFailed)
	}
	if !strings.Contains(run.FetchError, "connection refused") {
		t.Errorf("FetchError = %q, want fetch error text", run.FetchError)
	}
	if len(run.Records) != 2 {
		t.Errorf("Records = %d, want 2 (first page's records kept)", len(run.Records))
	}
}

func TestRun_DuplicatePageStops(t *testing.T) {
	// A next control that reloads identical content must stop at the
	// duplicate, not loop to the ceiling.
	fetch := &fakeFetcher{pages: map[string]string{
		"https://example.com/p2": listingPage("https://example.com/p2", "a", "b"),
	}}
	first := mustParse(t, listingPage("https://example.com/p2", "a", "b"), "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{MaxPages: 10}, nil).Run(context.Background(), first)

	if run.StopReason != models.StopDuplicatePage {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopDuplicatePage)
	}
	if run.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", run.PagesVisited)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := &fakeFetcher{pages: map[string]string{}}
	first := mustParse(t, listingPage("https://example.com/p2", "a"), "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{}, nil).Run(ctx, first)

	if run.StopReason != models.StopCancelled {
		t.Errorf("StopReason = %s, want %s", run.StopReason, models.StopCancelled)
	}
	if len(fetch.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0 (cancellation precedes fetch)", len(fetch.calls))
	}
	if len(run.Records) != 1 {
		t.Errorf("Records = %d, want 1 (first page kept)", len(run.Records))
	}
}

func TestRun_ExplicitNextSelector(t *testing.T) {
	html := `<html><body><ul><li>a</li></ul>
<a class="more" href="/p2">more results</a>
<a rel="next" href="/wrong">Next</a>
</body></html>`
	fetch := &fakeFetcher{pages: map[string]string{
		"https://example.com/p2": listingPage("", "b"),
	}}
	first := mustParse(t, html, "https://example.com/p1")

	run := NewController(fetch, itemExtract, Options{NextSelector: "a.more"}, nil).Run(context.Background(), first)

	if len(fetch.calls) != 1 || fetch.calls[0] != "https://example.com/p2" {
		t.Errorf("fetch calls = %v, want [https://example.com/p2]", fetch.calls)
	}
	if run.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", run.PagesVisited)
	}
}

func TestRun_ExplicitSelectorNoMatchStops(t *testing.T) {
	first := mustParse(t, listingPage("https://example.com/p2", "a"), "https://example.com/p1")
	fetch := &fakeFetcher{pages: map[string]string{}}

	run := NewController(fetch, itemExtract, Options{NextSelector: "a.missing"}, nil).Run(context.Background(), first)

	if run.StopReason != models.StopNoNextLocator {
		t.Errorf("StopReason = %s, want %s (explicit selector does not fall back)", run.StopReason, models.StopNoNextLocator)
	}
}

func TestDetectNext(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "rel next",
			html: `<a rel="next" href="/p2">Next</a>`,
			want: "https://example.com/p2",
		},
		{
			name: "class next",
			html: `<a class="btn-next" href="/p2">forward</a>`,
			want: "https://example.com/p2",
		},
		{
			name: "pagination last child",
			html: `<div class="pagination"><a href="/p1">1</a><a href="/p2">2</a></div>`,
			want: "https://example.com/p2",
		},
		{
			name: "label text",
			html: `<a href="/older">Older</a>`,
			want: "https://example.com/older",
		},
		{
			name: "label arrow",
			html: `<a href="/p2">»</a>`,
			want: "https://example.com/p2",
		},
		{
			name: "fragment href ignored",
			html: `<a rel="next" href="#">Next</a>`,
			want: "",
		},
		{
			name: "no next control",
			html: `<a href="/about">About us</a>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "<html><body>"+tt.html+"</body></html>", "https://example.com/p1")
			if got := DetectNext(doc); got != tt.want {
				t.Errorf("DetectNext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectNext_NoBaseURLKeepsRelative(t *testing.T) {
	doc := mustParse(t, `<html><body><a rel="next" href="/p2">Next</a></body></html>`, "")
	if got := DetectNext(doc); got != "/p2" {
		t.Errorf("DetectNext() = %q, want /p2", got)
	}
}
