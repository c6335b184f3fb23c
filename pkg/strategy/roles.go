package strategy

import (
	"fmt"
	"strings"

	"pagesift/pkg/dom"
)

// RolePriorities maps a field role to the selector patterns tried in order
// within a container; the first selector with a match wins and absence
// leaves the field unset.
type RolePriorities map[string][]string

// DefaultRoles is the documented default search order per field role. The
// order is a policy choice: explicit role classes are preferred over
// generic heading or anchor fallbacks.
func DefaultRoles() RolePriorities {
	return RolePriorities{
		"title":       {"h1", "h2", "h3", "h4", "[class*=title]", "[class*=heading]"},
		"name":        {"[class*=name]", "[class*=title]", "h2", "h3", "h4"},
		"description": {"[class*=description]", "[class*=excerpt]", "[class*=summary]"},
		"price":       {".price", "[class*=price]"},
		"rating":      {"[class*=rating]", "[class*=stars]"},
		"author":      {"[class*=author]", "[class*=byline]", "[class*=writer]"},
		"date":        {"time", "[class*=date]", "[class*=published]"},
		"link":        {"a[href]"},
		"image":       {"img"},
	}
}

// ParseRoles overlays operator-supplied search orders onto the defaults.
// The flag syntax is "role:sel|sel,role:sel", e.g.
// "price:.cost|[class*=amount],title:h2". Selectors are validated up front.
func ParseRoles(spec string) (RolePriorities, error) {
	roles := DefaultRoles()
	if spec == "" {
		return roles, nil
	}
	for _, part := range strings.Split(spec, ",") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid role spec part: %s", part)
		}
		role := strings.TrimSpace(kv[0])
		if role == "" {
			return nil, fmt.Errorf("invalid role spec part: %s", part)
		}
		var selectors []string
		for _, sel := range strings.Split(kv[1], "|") {
			sel = strings.TrimSpace(sel)
			if err := dom.CheckSelector(sel); err != nil {
				return nil, fmt.Errorf("role %q: %w", role, err)
			}
			selectors = append(selectors, sel)
		}
		roles[role] = selectors
	}
	return roles, nil
}

// find returns the first element matching the role's search order within
// the container, or nil.
func (rp RolePriorities) find(container *dom.Node, role string) *dom.Node {
	for _, sel := range rp[role] {
		if n := container.SelectFirst(sel); n != nil {
			return n
		}
	}
	return nil
}

// text resolves a role to its collapsed text, or "" when absent.
func (rp RolePriorities) text(container *dom.Node, role string) string {
	if n := rp.find(container, role); n != nil {
		return collapse(n.Text())
	}
	return ""
}

// collapse trims a string and folds internal whitespace runs to single
// spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstAttr returns the first non-empty attribute among names.
func firstAttr(n *dom.Node, names ...string) string {
	for _, name := range names {
		if v, ok := n.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
