package strategy

import (
	"pagesift/models"
	"pagesift/pkg/classify"
	"pagesift/pkg/dom"
)

// listStrategy extracts one record per direct list item of each qualifying
// ul/ol. Fields: text, plus link/image when the item carries them.
type listStrategy struct{}

func (s *listStrategy) Category() models.Category {
	return models.CategoryList
}

func (s *listStrategy) Extract(doc *dom.Document) []*models.Record {
	lists := classify.QualifyingLists(doc)
	var records []*models.Record

	for listIdx, list := range lists {
		for _, item := range list.ChildrenMatching("li") {
			rec := models.NewRecord()
			rec.SetFirst("text", collapse(item.Text()))

			if a := item.SelectFirst("a[href]"); a != nil {
				if href := firstAttr(a, "href"); href != "" {
					rec.SetFirst("link", href)
				}
			}
			if img := item.SelectFirst("img"); img != nil {
				if src := firstAttr(img, "src", "data-src"); src != "" {
					rec.SetFirst("image", src)
				}
			}
			if len(lists) > 1 {
				rec.Set("_list_index", listIdx)
			}
			records = append(records, rec)
		}
	}
	return records
}

// cardStrategy extracts one record per repeated card container, resolving
// title, description, link and image by role-priority search.
type cardStrategy struct {
	roles RolePriorities
}

func (s *cardStrategy) Category() models.Category {
	return models.CategoryCardGrid
}

func (s *cardStrategy) Extract(doc *dom.Document) []*models.Record {
	cards, _ := classify.CardContainers(doc)
	var records []*models.Record

	for _, card := range cards {
		rec := models.NewRecord()
		if title := s.roles.text(card, "title"); title != "" {
			rec.SetFirst("title", title)
		}
		if desc := s.roles.text(card, "description"); desc != "" {
			rec.SetFirst("description", desc)
		}
		if a := s.roles.find(card, "link"); a != nil {
			if href := firstAttr(a, "href"); href != "" {
				rec.SetFirst("link", href)
			}
		}
		if img := s.roles.find(card, "image"); img != nil {
			if src := firstAttr(img, "src", "data-src"); src != "" {
				rec.SetFirst("image", src)
			}
		}
		// Untitled cards keep their text so the record is not empty.
		if !rec.Has("title") {
			rec.SetFirst("text", truncate(collapse(card.Text()), cardTextCap))
		}
		records = append(records, rec)
	}
	return records
}

// cardTextCap bounds the fallback text of an untitled card.
const cardTextCap = 200

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
