// Package classify scores competing structural hypotheses about a document
// and ranks the content categories it may hold. All signals are structural
// and deterministic: the same document always yields the same ranking.
package classify

import (
	"sort"

	"pagesift/models"
	"pagesift/pkg/dom"
)

const (
	// MinConfidence is the floor below which the top-ranked category is
	// discarded and the run falls back to generic extraction. Detectors
	// score well above this on genuinely structured pages; weak accidental
	// matches (a two-row layout table, a three-item nav list) land below it.
	MinConfidence = 0.35

	// GenericConfidence is the fixed score of the always-available fallback.
	// It sits under MinConfidence so it never outranks a real detection.
	GenericConfidence = 0.10
)

// Classify runs every category detector against the document and returns
// the results ranked by confidence, highest first. Exact ties resolve to
// the earlier category in models.EvaluationOrder, most structurally
// specific first.
func Classify(doc *dom.Document) []models.Classification {
	results := make([]models.Classification, 0, len(models.EvaluationOrder))
	for _, cat := range models.EvaluationOrder {
		results = append(results, detect(cat, doc))
	}
	return Rank(results)
}

// Rank orders classifications by descending confidence. The sort is stable,
// so inputs listed in evaluation order keep that order on exact ties.
func Rank(results []models.Classification) []models.Classification {
	ranked := make([]models.Classification, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// Best picks the winning category from a ranking. A top confidence below
// MinConfidence is structural ambiguity, resolved internally by falling
// back to generic; it is never surfaced as an error.
func Best(ranked []models.Classification) models.Classification {
	if len(ranked) == 0 {
		return models.Classification{
			Category:   models.CategoryGeneric,
			Confidence: GenericConfidence,
			Evidence:   "empty ranking",
		}
	}
	top := ranked[0]
	if top.Confidence < MinConfidence {
		for _, r := range ranked {
			if r.Category == models.CategoryGeneric {
				return r
			}
		}
		return models.Classification{
			Category:   models.CategoryGeneric,
			Confidence: GenericConfidence,
			Evidence:   "low confidence fallback",
		}
	}
	return top
}

func detect(cat models.Category, doc *dom.Document) models.Classification {
	switch cat {
	case models.CategoryTable:
		return detectTable(doc)
	case models.CategoryProduct:
		return detectProduct(doc)
	case models.CategoryCardGrid:
		return detectCardGrid(doc)
	case models.CategoryList:
		return detectList(doc)
	case models.CategoryArticle:
		return detectArticle(doc)
	default:
		return models.Classification{
			Category:   models.CategoryGeneric,
			Confidence: GenericConfidence,
			Evidence:   "always-available fallback",
		}
	}
}
