// Package common holds small helpers shared by the CLI actions.
package common

import (
	"net/url"
	"regexp"
	"strings"
)

// urlPattern is a coarse shape check applied after cleanup: scheme, a sane
// domain, optional path.
var urlPattern = regexp.MustCompile(`^https?://[a-zA-Z0-9][-a-zA-Z0-9.]*[a-zA-Z0-9](/[^\s]*)?$`)

// markdownLinkPattern extracts the URL from a pasted markdown link.
var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^)]+)\)$`)

// SanitizeURL cleans up common copy-paste artifacts on a URL: surrounding
// whitespace, trailing punctuation, markdown link syntax, wrapping brackets.
func SanitizeURL(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if m := markdownLinkPattern.FindStringSubmatch(cleaned); len(m) > 1 {
		cleaned = m[1]
	}
	cleaned = strings.TrimRight(cleaned, ",.)}]\"'>;")
	cleaned = strings.TrimLeft(cleaned, "([<\"'")
	return strings.TrimSpace(cleaned)
}

// SanitizeAndValidateURLs cleans every URL and splits the input into valid
// (sanitized) and invalid entries. Invalid entries are reported in their
// original form.
func SanitizeAndValidateURLs(urls []string) (valid []string, invalid []string) {
	for _, raw := range urls {
		cleaned := SanitizeURL(raw)
		if !validURL(cleaned) {
			invalid = append(invalid, raw)
			continue
		}
		valid = append(valid, cleaned)
	}
	return valid, invalid
}

func validURL(s string) bool {
	if s == "" || strings.Contains(s, " ") || !urlPattern.MatchString(s) {
		return false
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return false
	}
	return true
}
