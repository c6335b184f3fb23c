package models

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// FieldMode selects how a value is pulled from a matched element.
type FieldMode string

const (
	// FieldModeText extracts the element's flattened text content.
	FieldModeText FieldMode = "text"
	// FieldModeAttr extracts a named attribute; FieldSelector.Attr names it.
	FieldModeAttr FieldMode = "attr"
	// FieldModeHTML extracts the element's inner HTML.
	FieldModeHTML FieldMode = "html"
)

// FieldSelector describes how one output field is resolved inside a
// container match.
type FieldSelector struct {
	Selector string    `yaml:"selector" json:"selector"`
	Mode     FieldMode `yaml:"mode,omitempty" json:"mode,omitempty"`
	Attr     string    `yaml:"attr,omitempty" json:"attr,omitempty"`
}

// ExtractionConfig is an operator-provided selector map. When present it
// fully determines container and field resolution and classification is
// skipped. Field selectors are resolved relative to each container match,
// never to the document root.
type ExtractionConfig struct {
	Container string                   `yaml:"container" json:"container"`
	Fields    map[string]FieldSelector `yaml:"fields" json:"fields"`
}

// Validate rejects a malformed config before any fetch occurs: a missing
// container, an empty field map, an unparsable selector, an unknown mode,
// or attr mode without an attribute name.
func (c *ExtractionConfig) Validate() error {
	if c.Container == "" {
		return fmt.Errorf("selector config: container is required")
	}
	if _, err := cascadia.Parse(c.Container); err != nil {
		return fmt.Errorf("selector config: container %q: %w", c.Container, err)
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("selector config: at least one field is required")
	}
	for name, fs := range c.Fields {
		if fs.Selector == "" {
			return fmt.Errorf("selector config: field %q: selector is required", name)
		}
		if _, err := cascadia.Parse(fs.Selector); err != nil {
			return fmt.Errorf("selector config: field %q: %w", name, err)
		}
		switch fs.Mode {
		case "", FieldModeText, FieldModeHTML:
		case FieldModeAttr:
			if fs.Attr == "" {
				return fmt.Errorf("selector config: field %q: attr mode requires an attribute name", name)
			}
		default:
			return fmt.Errorf("selector config: field %q: unknown mode %q", name, fs.Mode)
		}
	}
	return nil
}

// PaginationConfig controls the pagination walk.
type PaginationConfig struct {
	// MaxPages caps the number of documents visited in one run. Zero means
	// the controller's default ceiling.
	MaxPages int `yaml:"max_pages,omitempty" json:"max_pages,omitempty"`
	// NextSelector, when set, names the "next" control explicitly instead of
	// relying on detected patterns.
	NextSelector string `yaml:"next_selector,omitempty" json:"next_selector,omitempty"`
	// ContinueOnEmpty keeps walking while a next-page locator resolves even
	// if a page produced zero records.
	ContinueOnEmpty bool `yaml:"continue_on_empty,omitempty" json:"continue_on_empty,omitempty"`
}

// ScrapeConfig is the file form of operator input: an optional selector
// override plus pagination parameters.
type ScrapeConfig struct {
	Selectors  *ExtractionConfig `yaml:"selectors,omitempty" json:"selectors,omitempty"`
	Pagination PaginationConfig  `yaml:"pagination,omitempty" json:"pagination,omitempty"`
}
