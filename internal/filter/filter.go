// Package filter derives the listing view from the catalog and the active
// filter criteria.
package filter

import (
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

type predicate func(domain.Product) bool

// Apply returns the products of catalog matching every active criterion, in
// catalog order. The result is never nil and never aliases catalog.
func Apply(catalog []domain.Product, c domain.FilterCriteria) []domain.Product {
	out := make([]domain.Product, len(catalog))
	copy(out, catalog)

	for _, keep := range stages(c) {
		out = narrow(out, keep)
	}
	return out
}

// stages returns the predicates for the active criteria in application order:
// text query, price band, rating floor.
func stages(c domain.FilterCriteria) []predicate {
	var ps []predicate

	if c.Query != "" {
		q := strings.ToLower(c.Query)
		ps = append(ps, func(p domain.Product) bool {
			return strings.Contains(strings.ToLower(p.Title), q) ||
				strings.Contains(strings.ToLower(p.Description), q)
		})
	}

	if c.Price != "" && c.Price != domain.PriceAll {
		band := c.Price
		ps = append(ps, func(p domain.Product) bool {
			return band.Contains(p.Price)
		})
	}

	if c.Rating != "" && c.Rating != domain.RatingAll {
		floor := c.Rating.Min()
		ps = append(ps, func(p domain.Product) bool {
			return p.HasRating() && p.Rating.Rate >= floor
		})
	}

	return ps
}

// narrow filters in place, keeping order.
func narrow(products []domain.Product, keep predicate) []domain.Product {
	n := 0
	for _, p := range products {
		if keep(p) {
			products[n] = p
			n++
		}
	}
	return products[:n]
}
