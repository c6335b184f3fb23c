package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"pagesift/models"
	"pagesift/pkg/dom"
)

// Detector thresholds. Each is a floor on the repetition a structure needs
// before it counts as a signal rather than page furniture.
const (
	// minTableDataRows: a data table needs a header row plus at least two
	// data rows; single-row tables are usually layout scaffolding.
	minTableDataRows = 2
	// minListItems: shorter lists are almost always navigation.
	minListItems = 3
	// minCardSiblings: a card grid needs at least three repeated siblings.
	minCardSiblings = 3
	// minProductContainers: repeated price-bearing containers below this
	// count are more likely a single highlighted offer than a listing.
	minProductContainers = 3
	// minArticleTextRunes: the dominant block of an article must carry at
	// least this much paragraph text.
	minArticleTextRunes = 400
	// repetitionSaturation: repetition counts at or above this saturate the
	// count component of a confidence score.
	repetitionSaturation = 10
)

// priceTokenPattern matches currency-symbol-plus-number tokens such as
// "$19.99", "€ 1.200,50" or "1200 USD".
var priceTokenPattern = regexp.MustCompile(`(?:[$€£¥₹]\s?\d[\d.,]*)|(?:\d[\d.,]*\s?(?:USD|EUR|GBP|JPY)\b)`)

// cardClassTokens are class-attribute substrings that mark card-style
// repeated containers, tried in order; the largest group wins.
var cardClassTokens = []string{"card", "tile", "grid-item", "box"}

// PriceText reports whether s contains a currency-number token.
func PriceText(s string) bool {
	return priceTokenPattern.MatchString(s)
}

// PriceToken returns the first currency-number token in s, or "".
func PriceToken(s string) string {
	return priceTokenPattern.FindString(s)
}

// countScore maps a repetition count onto [0,1], saturating at
// repetitionSaturation.
func countScore(n int) float64 {
	if n >= repetitionSaturation {
		return 1.0
	}
	return float64(n) / float64(repetitionSaturation)
}

// shapeSignature summarizes a node's subtree shape as the sorted set of its
// direct children's tags. Containers with equal signatures are considered
// shape-similar.
func shapeSignature(n *dom.Node) string {
	seen := map[string]bool{}
	var tags []string
	for _, c := range n.Children() {
		t := c.Tag()
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}

// shapeConsistency returns the fraction of nodes sharing the most common
// shape signature.
func shapeConsistency(nodes []*dom.Node) float64 {
	if len(nodes) == 0 {
		return 0
	}
	counts := map[string]int{}
	for _, n := range nodes {
		counts[shapeSignature(n)]++
	}
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	return float64(best) / float64(len(nodes))
}

// dropNested removes candidates that sit inside another candidate, keeping
// only the outermost containers.
func dropNested(nodes []*dom.Node) []*dom.Node {
	var out []*dom.Node
	for i, n := range nodes {
		nested := false
		for j, other := range nodes {
			if i != j && other.ContainsNode(n) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, n)
		}
	}
	return out
}

// QualifyingTables returns tables carrying at least a header row and
// minTableDataRows data rows. Strategies enumerate the same tables the
// detector scored.
func QualifyingTables(doc *dom.Document) []*dom.Node {
	var out []*dom.Node
	for _, t := range doc.Select("table") {
		if len(t.Select("tr")) >= minTableDataRows+1 {
			out = append(out, t)
		}
	}
	return out
}

func detectTable(doc *dom.Document) models.Classification {
	result := models.Classification{Category: models.CategoryTable}
	tables := QualifyingTables(doc)
	if len(tables) == 0 {
		return result
	}

	// Score the most regular table: the fraction of rows sharing the modal
	// cell count.
	best := 0.0
	bestRows := 0
	for _, t := range tables {
		rows := t.Select("tr")
		counts := map[int]int{}
		for _, r := range rows {
			counts[len(r.Select("th, td"))]++
		}
		modal := 0
		for _, c := range counts {
			if c > modal {
				modal = c
			}
		}
		regularity := float64(modal) / float64(len(rows))
		if regularity > best {
			best = regularity
			bestRows = len(rows) - 1
		}
	}
	result.Confidence = 0.6 + 0.4*best
	result.Evidence = fmt.Sprintf("table with %d data rows", bestRows)
	return result
}

// QualifyingLists returns ul/ol elements with at least minListItems direct
// list items.
func QualifyingLists(doc *dom.Document) []*dom.Node {
	var out []*dom.Node
	for _, l := range doc.Select("ul, ol") {
		if len(l.ChildrenMatching("li")) >= minListItems {
			out = append(out, l)
		}
	}
	return out
}

func detectList(doc *dom.Document) models.Classification {
	result := models.Classification{Category: models.CategoryList}
	lists := QualifyingLists(doc)
	if len(lists) == 0 {
		return result
	}

	best := 0.0
	bestItems := 0
	for _, l := range lists {
		items := l.ChildrenMatching("li")
		score := 0.4*countScore(len(items)) + 0.6*shapeConsistency(items)
		if score > best {
			best = score
			bestItems = len(items)
		}
	}
	result.Confidence = best
	result.Evidence = fmt.Sprintf("list with %d similar items", bestItems)
	return result
}

// CardContainers returns the largest group of repeated card-style siblings,
// plus the class token that selected them. The group is empty when no token
// yields minCardSiblings outermost containers.
func CardContainers(doc *dom.Document) ([]*dom.Node, string) {
	var bestGroup []*dom.Node
	bestToken := ""
	for _, token := range cardClassTokens {
		group := dropNested(doc.Select("[class*=" + token + "]"))
		if len(group) >= minCardSiblings && len(group) > len(bestGroup) {
			bestGroup = group
			bestToken = token
		}
	}
	return bestGroup, bestToken
}

func detectCardGrid(doc *dom.Document) models.Classification {
	result := models.Classification{Category: models.CategoryCardGrid}
	cards, token := CardContainers(doc)
	if len(cards) == 0 {
		return result
	}

	withMedia := 0
	for _, c := range cards {
		if c.SelectFirst("img") != nil || c.SelectFirst("h1, h2, h3, h4, h5, h6") != nil {
			withMedia++
		}
	}
	mediaRate := float64(withMedia) / float64(len(cards))
	result.Confidence = 0.3*countScore(len(cards)) + 0.5*shapeConsistency(cards) + 0.2*mediaRate
	result.Evidence = fmt.Sprintf("%d siblings with class token %q", len(cards), token)
	return result
}

// ProductContainers returns outermost repeated containers that look like
// product entries: product/item-classed elements holding a price-like token
// or a title element.
func ProductContainers(doc *dom.Document) []*dom.Node {
	candidates := dropNested(doc.Select("[class*=product], [class*=item]"))
	var out []*dom.Node
	for _, c := range candidates {
		hasName := c.SelectFirst("h1, h2, h3, h4, [class*=title], [class*=name]") != nil
		if hasName || PriceText(c.Text()) {
			out = append(out, c)
		}
	}
	return out
}

func detectProduct(doc *dom.Document) models.Classification {
	result := models.Classification{Category: models.CategoryProduct}
	containers := ProductContainers(doc)
	if len(containers) < minProductContainers {
		return result
	}

	priced := 0
	named := 0
	for _, c := range containers {
		if PriceText(c.Text()) {
			priced++
		}
		if c.SelectFirst("h1, h2, h3, h4, [class*=title], [class*=name]") != nil {
			named++
		}
	}
	priceRate := float64(priced) / float64(len(containers))
	nameRate := float64(named) / float64(len(containers))
	result.Confidence = 0.3*countScore(len(containers)) + 0.5*priceRate + 0.2*nameRate
	result.Evidence = fmt.Sprintf("%d containers, %d price-bearing", len(containers), priced)
	return result
}

// articleRootSelectors are tried in order when locating the dominant
// content block.
var articleRootSelectors = []string{
	"article",
	"main",
	"[class*=post-body]",
	"[class*=article]",
	"[class*=content]",
}

// ArticleRoot returns the dominant content block of an article-style page,
// or nil.
func ArticleRoot(doc *dom.Document) *dom.Node {
	for _, sel := range articleRootSelectors {
		if n := doc.SelectFirst(sel); n != nil {
			return n
		}
	}
	return nil
}

func detectArticle(doc *dom.Document) models.Classification {
	result := models.Classification{Category: models.CategoryArticle}
	root := ArticleRoot(doc)
	if root == nil {
		return result
	}

	textRunes := 0
	for _, p := range root.Select("p") {
		textRunes += len([]rune(strings.TrimSpace(p.Text())))
	}
	if textRunes < minArticleTextRunes {
		return result
	}

	conf := 0.5
	if doc.SelectFirst("h1") != nil || root.SelectFirst("h1, h2") != nil {
		conf += 0.1
	}
	if doc.SelectFirst("[class*=author], [class*=byline]") != nil {
		conf += 0.15
	}
	if doc.SelectFirst("time, [class*=date], [class*=published]") != nil {
		conf += 0.15
	}
	if textRunes >= 2*minArticleTextRunes {
		conf += 0.1
	}
	result.Confidence = conf
	result.Evidence = fmt.Sprintf("dominant block with %d text runes", textRunes)
	return result
}
