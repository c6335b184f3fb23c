// Package strategy converts matched DOM fragments into field-value records,
// one strategy per content category plus operator-configured extraction.
package strategy

import (
	"pagesift/models"
	"pagesift/pkg/dom"
)

// Strategy enumerates record containers for its category and maps
// sub-elements to field names. Zero containers is a legitimate terminal
// state: strategies return an empty sequence, never an error.
type Strategy interface {
	Category() models.Category
	Extract(doc *dom.Document) []*models.Record
}

// Registry holds one strategy per category, sharing a single role-priority
// table across the role-driven strategies.
type Registry struct {
	strategies map[models.Category]Strategy
}

// NewRegistry builds the full strategy set. A nil roles table means
// DefaultRoles.
func NewRegistry(roles RolePriorities) *Registry {
	if roles == nil {
		roles = DefaultRoles()
	}
	r := &Registry{strategies: make(map[models.Category]Strategy)}
	r.register(&tableStrategy{})
	r.register(&listStrategy{})
	r.register(&cardStrategy{roles: roles})
	r.register(newArticleStrategy(roles))
	r.register(&productStrategy{roles: roles})
	r.register(&genericStrategy{})
	return r
}

func (r *Registry) register(s Strategy) {
	r.strategies[s.Category()] = s
}

// Lookup returns the strategy registered for the category.
func (r *Registry) Lookup(cat models.Category) (Strategy, bool) {
	s, ok := r.strategies[cat]
	return s, ok
}
