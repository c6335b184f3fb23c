package classify

import (
	"reflect"
	"testing"

	"pagesift/models"
	"pagesift/pkg/dom"
)

func mustParse(t *testing.T, html string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(html, "https://example.com/")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

const tablePage = `<html><body>
<table>
  <thead><tr><th>Name</th><th>Price</th><th>Stock</th></tr></thead>
  <tbody>
    <tr><td>Widget</td><td>$10</td><td>5</td></tr>
    <tr><td>Gadget</td><td>$20</td><td>3</td></tr>
    <tr><td>Gizmo</td><td>$30</td><td>0</td></tr>
  </tbody>
</table>
</body></html>`

const listPage = `<html><body>
<ul>
  <li><a href="/a">Alpha</a></li>
  <li><a href="/b">Beta</a></li>
  <li><a href="/c">Gamma</a></li>
  <li><a href="/d">Delta</a></li>
  <li><a href="/e">Epsilon</a></li>
</ul>
</body></html>`

const cardPage = `<html><body>
<div class="grid">
  <div class="card"><h3>One</h3><img src="/1.png"><p>first</p></div>
  <div class="card"><h3>Two</h3><img src="/2.png"><p>second</p></div>
  <div class="card"><h3>Three</h3><img src="/3.png"><p>third</p></div>
  <div class="card"><h3>Four</h3><img src="/4.png"><p>fourth</p></div>
</div>
</body></html>`

const productPage = `<html><body>
<div class="product"><h3 class="name">Widget</h3><span class="price">$19.99</span></div>
<div class="product"><h3 class="name">Gadget</h3><span class="price">$29.99</span></div>
<div class="product"><h3 class="name">Gizmo</h3><span class="price">$39.99</span></div>
<div class="product"><h3 class="name">Doodad</h3><span class="price">$49.99</span></div>
</body></html>`

func articlePage() string {
	para := "<p>The committee voted on Thursday to adopt the revised framework, a decision that observers had expected for several weeks given the mounting pressure from member organizations.</p>"
	return `<html><body><article><h1>Framework Adopted</h1>
<span class="byline">Jordan Reyes</span>
<time datetime="2024-03-01">March 1, 2024</time>` +
		para + para + para + para +
		`</article></body></html>`
}

func TestClassify_Table(t *testing.T) {
	best := Best(Classify(mustParse(t, tablePage)))
	if best.Category != models.CategoryTable {
		t.Errorf("Best().Category = %s, want table", best.Category)
	}
	if best.Confidence < MinConfidence {
		t.Errorf("Best().Confidence = %.2f, want >= %.2f", best.Confidence, MinConfidence)
	}
}

func TestClassify_List(t *testing.T) {
	best := Best(Classify(mustParse(t, listPage)))
	if best.Category != models.CategoryList {
		t.Errorf("Best().Category = %s, want list", best.Category)
	}
}

func TestClassify_CardGrid(t *testing.T) {
	best := Best(Classify(mustParse(t, cardPage)))
	if best.Category != models.CategoryCardGrid {
		t.Errorf("Best().Category = %s, want cards", best.Category)
	}
}

func TestClassify_Product(t *testing.T) {
	best := Best(Classify(mustParse(t, productPage)))
	if best.Category != models.CategoryProduct {
		t.Errorf("Best().Category = %s, want product", best.Category)
	}
}

func TestClassify_Article(t *testing.T) {
	best := Best(Classify(mustParse(t, articlePage())))
	if best.Category != models.CategoryArticle {
		t.Errorf("Best().Category = %s, want article", best.Category)
	}
}

func TestClassify_EmptyBody_FallsBackToGeneric(t *testing.T) {
	best := Best(Classify(mustParse(t, "<html><body></body></html>")))
	if best.Category != models.CategoryGeneric {
		t.Errorf("Best().Category = %s, want generic", best.Category)
	}
	if best.Confidence != GenericConfidence {
		t.Errorf("Best().Confidence = %.2f, want %.2f", best.Confidence, GenericConfidence)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	doc := mustParse(t, cardPage)
	first := Classify(doc)
	for i := 0; i < 10; i++ {
		if got := Classify(doc); !reflect.DeepEqual(got, first) {
			t.Fatalf("Classify() run %d = %v, want %v", i, got, first)
		}
	}
}

func TestRank_ExactTieKeepsEvaluationOrder(t *testing.T) {
	// Inputs listed in evaluation order with an exact confidence tie: the
	// stable sort must keep table ahead of product.
	in := []models.Classification{
		{Category: models.CategoryTable, Confidence: 0.8},
		{Category: models.CategoryProduct, Confidence: 0.8},
		{Category: models.CategoryGeneric, Confidence: GenericConfidence},
	}
	ranked := Rank(in)
	if ranked[0].Category != models.CategoryTable {
		t.Errorf("ranked[0].Category = %s, want table", ranked[0].Category)
	}
	if ranked[1].Category != models.CategoryProduct {
		t.Errorf("ranked[1].Category = %s, want product", ranked[1].Category)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []models.Classification{
		{Category: models.CategoryList, Confidence: 0.2},
		{Category: models.CategoryTable, Confidence: 0.9},
	}
	Rank(in)
	if in[0].Category != models.CategoryList {
		t.Error("Rank() mutated its input slice")
	}
}

func TestBest_BelowThresholdFallsBack(t *testing.T) {
	ranked := []models.Classification{
		{Category: models.CategoryList, Confidence: 0.2},
		{Category: models.CategoryGeneric, Confidence: GenericConfidence, Evidence: "always-available fallback"},
	}
	best := Best(ranked)
	if best.Category != models.CategoryGeneric {
		t.Errorf("Best().Category = %s, want generic", best.Category)
	}
}

func TestBest_EmptyRanking(t *testing.T) {
	best := Best(nil)
	if best.Category != models.CategoryGeneric {
		t.Errorf("Best().Category = %s, want generic", best.Category)
	}
}

func TestPriceText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"$19.99", true},
		{"€ 1.200,50", true},
		{"1200 USD", true},
		{"£5", true},
		{"no price here", false},
		{"version 2.0", false},
	}
	for _, tt := range tests {
		if got := PriceText(tt.in); got != tt.want {
			t.Errorf("PriceText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestQualifyingTables_SkipsSmallTables(t *testing.T) {
	doc := mustParse(t, `<html><body>
<table><tr><td>layout</td></tr></table>
`+tablePage+`
</body></html>`)
	if got := len(QualifyingTables(doc)); got != 1 {
		t.Errorf("QualifyingTables() = %d tables, want 1", got)
	}
}

func TestQualifyingLists_SkipsShortLists(t *testing.T) {
	doc := mustParse(t, `<html><body>
<ul><li>a</li><li>b</li></ul>
<ul><li>a</li><li>b</li><li>c</li></ul>
</body></html>`)
	if got := len(QualifyingLists(doc)); got != 1 {
		t.Errorf("QualifyingLists() = %d lists, want 1", got)
	}
}
