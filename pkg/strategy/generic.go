package strategy

import (
	"pagesift/models"
	"pagesift/pkg/dom"
)

const (
	// genericSiblingTextCap bounds the sibling content attached to a heading
	// record.
	genericSiblingTextCap = 500
	// genericMinParagraphRunes filters out stub paragraphs (button labels,
	// footers) from the generic enumeration.
	genericMinParagraphRunes = 80
	// genericMinLinkTextRunes drops icon-only anchors from the link
	// inventory.
	genericMinLinkTextRunes = 3
)

// genericStrategy is the always-available fallback: it enumerates headings
// with their following content, substantial paragraph blocks, and a link
// inventory. Records are heterogeneous by design and their differing key
// sets are preserved.
type genericStrategy struct{}

func (s *genericStrategy) Category() models.Category {
	return models.CategoryGeneric
}

func (s *genericStrategy) Extract(doc *dom.Document) []*models.Record {
	var records []*models.Record

	for _, heading := range doc.Select("h1, h2, h3, h4, h5, h6") {
		rec := models.NewRecord()
		rec.SetFirst("type", heading.Tag())
		rec.SetFirst("text", collapse(heading.Text()))
		if sibling := heading.NextSibling(); sibling != nil {
			if content := collapse(sibling.Text()); content != "" {
				rec.SetFirst("content", truncate(content, genericSiblingTextCap))
			}
		}
		records = append(records, rec)
	}

	for _, p := range doc.Select("p") {
		text := collapse(p.Text())
		if len([]rune(text)) < genericMinParagraphRunes {
			continue
		}
		rec := models.NewRecord()
		rec.SetFirst("type", "p")
		rec.SetFirst("text", text)
		records = append(records, rec)
	}

	if links := s.linkInventory(doc); len(links) > 0 {
		rec := models.NewRecord()
		rec.SetFirst("type", "links")
		rec.SetFirst("links", links)
		records = append(records, rec)
	}
	return records
}

// linkInventory collects distinct hrefs from anchors with real text, in
// document order.
func (s *genericStrategy) linkInventory(doc *dom.Document) []string {
	seen := map[string]bool{}
	var links []string
	for _, a := range doc.Select("a[href]") {
		href := firstAttr(a, "href")
		text := collapse(a.Text())
		if href == "" || len([]rune(text)) < genericMinLinkTextRunes || seen[href] {
			continue
		}
		seen[href] = true
		links = append(links, href)
	}
	return links
}
