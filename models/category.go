// Package models defines the shared data structures of the extraction
// pipeline: content categories, records, operator configuration and run
// results.
package models

// Category identifies the structural kind of content a page holds.
type Category string

const (
	CategoryTable    Category = "table"
	CategoryList     Category = "list"
	CategoryCardGrid Category = "cards"
	CategoryArticle  Category = "article"
	CategoryProduct  Category = "product"
	CategoryGeneric  Category = "generic"

	// CategoryCustom is reported when an operator selector config bypassed
	// classification. It never participates in detection.
	CategoryCustom Category = "custom"
)

// EvaluationOrder fixes both the detector run order and the tie-break
// preference: the most structurally specific category comes first, so an
// exact confidence tie resolves to the earlier entry.
var EvaluationOrder = []Category{
	CategoryTable,
	CategoryProduct,
	CategoryCardGrid,
	CategoryList,
	CategoryArticle,
	CategoryGeneric,
}

// Classification couples a category with the detector's confidence and the
// structural evidence that justified the score.
type Classification struct {
	Category   Category `json:"category" yaml:"category"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Evidence   string   `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}
