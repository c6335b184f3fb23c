package strategy

import (
	"pagesift/models"
	"pagesift/pkg/classify"
	"pagesift/pkg/dom"
)

// productStrategy extracts one record per repeated product container. The
// price role falls back to the first currency-number token in the
// container's text when no price-classed element exists.
type productStrategy struct {
	roles RolePriorities
}

func (s *productStrategy) Category() models.Category {
	return models.CategoryProduct
}

func (s *productStrategy) Extract(doc *dom.Document) []*models.Record {
	var records []*models.Record

	for _, container := range classify.ProductContainers(doc) {
		rec := models.NewRecord()
		if name := s.roles.text(container, "name"); name != "" {
			rec.SetFirst("name", name)
		}
		if price := s.resolvePrice(container); price != "" {
			rec.SetFirst("price", price)
		}
		if rating := s.roles.text(container, "rating"); rating != "" {
			rec.SetFirst("rating", rating)
		}
		if a := s.roles.find(container, "link"); a != nil {
			if href := firstAttr(a, "href"); href != "" {
				rec.SetFirst("link", href)
			}
		}
		if img := s.roles.find(container, "image"); img != nil {
			if src := firstAttr(img, "src", "data-src"); src != "" {
				rec.SetFirst("image", src)
			}
		}

		// Containers with neither a name nor a price are class-name noise.
		if rec.Has("name") || rec.Has("price") {
			records = append(records, rec)
		}
	}
	return records
}

// resolvePrice tries the price role's selector order first, then any
// currency-number token in the container text. First match wins.
func (s *productStrategy) resolvePrice(container *dom.Node) string {
	if price := s.roles.text(container, "price"); price != "" {
		return price
	}
	return classify.PriceToken(container.Text())
}
