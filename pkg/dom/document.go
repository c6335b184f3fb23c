// Package dom wraps the HTML parser behind a small capability set: node
// traversal, attribute and text access, and CSS-selector querying. The rest
// of the engine depends only on this package, never on the parser directly.
package dom

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Document is an immutable, queryable snapshot of one fetched page. It
// carries the page's base URL for link resolution and the raw HTML it was
// parsed from.
type Document struct {
	doc  *goquery.Document
	base *url.URL
	raw  string
}

// Parse builds a Document from raw HTML. Script, style and noscript nodes
// are dropped up front so that text and structure queries see only content.
// baseURL may be empty; relative links then stay relative.
func Parse(html string, baseURL string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	gq.Find("script, style, noscript").Remove()

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
	}
	return &Document{doc: gq, base: base, raw: html}, nil
}

// BaseURL returns the document's base URL, or nil if none was supplied.
func (d *Document) BaseURL() *url.URL {
	return d.base
}

// RawHTML returns the HTML the document was parsed from.
func (d *Document) RawHTML() string {
	return d.raw
}

// Select returns all nodes matching the selector in document order. An
// invalid selector yields no matches; use CheckSelector to validate
// operator-supplied selectors up front.
func (d *Document) Select(selector string) []*Node {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return collect(d.doc.FindMatcher(m))
}

// SelectFirst returns the first node matching the selector, or nil.
func (d *Document) SelectFirst(selector string) *Node {
	nodes := d.Select(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Body returns the document body, or nil for a body-less fragment.
func (d *Document) Body() *Node {
	return d.SelectFirst("body")
}

// Title returns the page title text.
func (d *Document) Title() string {
	sel := d.doc.Find("title")
	return strings.TrimSpace(sel.First().Text())
}

// CheckSelector reports whether a selector string is valid CSS. The zero
// error guarantees Select will not silently mis-match on syntax grounds.
func CheckSelector(selector string) error {
	if _, err := cascadia.Parse(selector); err != nil {
		return fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return nil
}

// Node is a single element within a Document.
type Node struct {
	sel *goquery.Selection
}

func collect(sel *goquery.Selection) []*Node {
	nodes := make([]*Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &Node{sel: s})
	})
	return nodes
}

// Tag returns the node's element name, e.g. "table" or "li".
func (n *Node) Tag() string {
	return goquery.NodeName(n.sel)
}

// Text returns the node's flattened text content, untrimmed.
func (n *Node) Text() string {
	return n.sel.Text()
}

// Attr returns the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// HTML returns the node's inner HTML.
func (n *Node) HTML() (string, error) {
	return n.sel.Html()
}

// Select returns descendant nodes matching the selector in document order.
func (n *Node) Select(selector string) []*Node {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return collect(n.sel.FindMatcher(m))
}

// SelectFirst returns the first matching descendant, or nil.
func (n *Node) SelectFirst(selector string) *Node {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	found := n.sel.FindMatcher(m).First()
	if found.Length() == 0 {
		return nil
	}
	return &Node{sel: found}
}

// Children returns the node's direct element children.
func (n *Node) Children() []*Node {
	return collect(n.sel.Children())
}

// ChildrenMatching returns direct children matching the selector.
func (n *Node) ChildrenMatching(selector string) []*Node {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return collect(n.sel.ChildrenMatcher(m))
}

// NextSibling returns the following sibling element, or nil.
func (n *Node) NextSibling() *Node {
	next := n.sel.Next()
	if next.Length() == 0 {
		return nil
	}
	return &Node{sel: next}
}

// ContainsNode reports whether other sits inside n's subtree.
func (n *Node) ContainsNode(other *Node) bool {
	if other == nil || len(other.sel.Nodes) == 0 {
		return false
	}
	return n.sel.Contains(other.sel.Nodes[0])
}

// ClassTokens returns the node's class attribute split into sorted tokens.
func (n *Node) ClassTokens() []string {
	cls, ok := n.sel.Attr("class")
	if !ok {
		return nil
	}
	tokens := strings.Fields(cls)
	sort.Strings(tokens)
	return tokens
}
