package models

// StopReason enumerates why a pagination walk ended.
type StopReason string

const (
	StopCeilingReached StopReason = "ceiling_reached"
	StopNoNextLocator  StopReason = "no_next_locator"
	StopEmptyBatch     StopReason = "empty_batch"
	StopFetchFailed    StopReason = "fetch_failed"
	StopDuplicatePage  StopReason = "duplicate_page"
	StopCancelled      StopReason = "cancelled"
)

// PageResult is one document's classification outcome, its extracted
// records, and the next-page locator if one resolved.
type PageResult struct {
	URL            string
	Classification Classification
	Records        []*Record
	NextLocator    string
}

// RunResult is the terminal artifact of one pagination walk: the ordered
// concatenation of all page records plus run metadata. It is handed to the
// output writer and, optionally, the record store.
type RunResult struct {
	URL          string     `json:"url" yaml:"url"`
	Category     Category   `json:"category" yaml:"category"`
	Confidence   float64    `json:"confidence" yaml:"confidence"`
	Records      []*Record  `json:"records" yaml:"records"`
	PagesVisited int        `json:"pages_visited" yaml:"pages_visited"`
	StopReason   StopReason `json:"stop_reason" yaml:"stop_reason"`
	FetchError   string     `json:"fetch_error,omitempty" yaml:"fetch_error,omitempty"`
	PageCounts   []int      `json:"page_counts,omitempty" yaml:"page_counts,omitempty"`
}
