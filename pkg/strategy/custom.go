package strategy

import (
	"sort"
	"strings"

	"pagesift/models"
	"pagesift/pkg/dom"
)

// ExtractCustom applies an operator selector config: containers are all
// matches of config.Container, and every field resolves to the first match
// of its selector within the container, extracted per the declared mode.
// Field selectors never escape their container. Zero container matches
// yields an empty sequence.
//
// The config must have passed Validate before any fetch; selectors here are
// assumed syntactically sound.
func ExtractCustom(doc *dom.Document, config *models.ExtractionConfig) []*models.Record {
	var records []*models.Record

	// Field order is deterministic for every record: sorted by name.
	names := make([]string, 0, len(config.Fields))
	for name := range config.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, container := range doc.Select(config.Container) {
		rec := models.NewRecord()
		for _, name := range names {
			fs := config.Fields[name]
			elem := container.SelectFirst(fs.Selector)
			if elem == nil {
				continue
			}
			if value, ok := fieldValue(elem, fs); ok {
				rec.SetFirst(name, value)
			}
		}
		records = append(records, rec)
	}
	return records
}

func fieldValue(elem *dom.Node, fs models.FieldSelector) (string, bool) {
	switch fs.Mode {
	case models.FieldModeAttr:
		v, ok := elem.Attr(fs.Attr)
		return strings.TrimSpace(v), ok
	case models.FieldModeHTML:
		html, err := elem.HTML()
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(html), true
	default:
		return collapse(elem.Text()), true
	}
}
