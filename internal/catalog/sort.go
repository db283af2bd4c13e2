package catalog

import (
	"cmp"
	"time"

	"courtside/internal/domain"
)

// comparator returns a three-way compare for mode. Ties compare equal so the stable sort
// keeps input order.
func comparator(mode SortMode) func(a, b domain.Facets) int {
	switch mode {
	case SortPriceAsc:
		return func(a, b domain.Facets) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		return func(a, b domain.Facets) int { return b.Price.Cmp(a.Price) }
	case SortNewest:
		return func(a, b domain.Facets) int { return createdAt(b).Compare(createdAt(a)) }
	default:
		return func(a, b domain.Facets) int { return cmp.Compare(b.Rating, a.Rating) }
	}
}

// createdAt treats missing or malformed timestamps as the oldest possible time.
func createdAt(f domain.Facets) time.Time {
	t, _ := domain.ParseCreatedAt(f.CreatedAt)
	return t
}
