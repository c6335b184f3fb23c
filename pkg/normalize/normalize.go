// Package normalize cleans extracted field values: whitespace collapse, URL
// absolutization against the document base, and currency-likeness checks.
// Normalization is idempotent; applying it to already-clean values is a
// no-op. Field-name collisions never reach this package: strategies resolve
// them at insertion time with a first-match-wins policy.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"pagesift/models"
)

// urlFields names the fields whose string values are resolved against the
// document base URL. Role-driven strategies and the list/table strategies
// emit links and images under these names.
var urlFields = map[string]bool{
	"link":   true,
	"url":    true,
	"image":  true,
	"images": true,
	"links":  true,
	"href":   true,
	"src":    true,
}

// currencyPattern recognizes values the consumer may rely on being
// parseable as a price. The original string is retained either way; the
// engine never converts types silently.
var currencyPattern = regexp.MustCompile(`^(?:[$€£¥₹]\s?\d[\d.,]*|\d[\d.,]*\s?(?:USD|EUR|GBP|JPY))$`)

// Records normalizes every record in place and returns the slice for
// chaining. base may be nil, in which case URLs stay as extracted.
func Records(records []*models.Record, base *url.URL) []*models.Record {
	for _, rec := range records {
		Record(rec, base)
	}
	return records
}

// Record normalizes a single record's values in place.
func Record(rec *models.Record, base *url.URL) {
	for _, key := range rec.Keys() {
		value, _ := rec.Get(key)
		switch v := value.(type) {
		case string:
			v = Collapse(v)
			if urlFields[key] {
				v = AbsoluteURL(v, base)
			}
			rec.Set(key, v)
		case []string:
			out := make([]string, len(v))
			for i, s := range v {
				s = Collapse(s)
				if urlFields[key] {
					s = AbsoluteURL(s, base)
				}
				out[i] = s
			}
			rec.Set(key, out)
		}
	}
}

// Collapse trims a string and folds internal whitespace runs, including
// newlines, to single spaces. Collapse is a fixed point: applying it twice
// equals applying it once.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AbsoluteURL resolves a possibly-relative URL reference against base.
// Already-absolute URLs, fragment-only references and non-HTTP schemes
// (mailto, javascript, data) pass through unchanged, as does everything
// when base is nil.
func AbsoluteURL(raw string, base *url.URL) string {
	if raw == "" || base == nil || strings.HasPrefix(raw, "#") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if ref.IsAbs() {
		// Covers http(s) URLs and non-page schemes like mailto: alike.
		return raw
	}
	return base.ResolveReference(ref).String()
}

// IsCurrency reports whether a normalized value is a currency-number token
// the consumer can rely on parsing.
func IsCurrency(s string) bool {
	return currencyPattern.MatchString(s)
}
