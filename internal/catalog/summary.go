package catalog

import (
	"slices"

	"github.com/shopspring/decimal"

	"courtside/internal/domain"
)

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type Availability struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

// Summary describes the filter facets present in a product list.
type Summary struct {
	CourtTypes   []string     `json:"courtTypes"`
	Sizes        []int        `json:"sizes"`
	PriceRange   *PriceRange  `json:"priceRange,omitempty"`
	Availability Availability `json:"availability"`
}

// Summarize collects court types in first-seen order, sorted distinct sizes, the price
// range and stock counts. PriceRange is nil for an empty list.
func Summarize(products []domain.Product) Summary {
	s := Summary{CourtTypes: []string{}, Sizes: []int{}}
	for i, p := range products {
		if p.CourtType != "" && !slices.Contains(s.CourtTypes, p.CourtType) {
			s.CourtTypes = append(s.CourtTypes, p.CourtType)
		}
		for _, size := range p.Sizes {
			if !slices.Contains(s.Sizes, size) {
				s.Sizes = append(s.Sizes, size)
			}
		}
		if p.InStock {
			s.Availability.InStock++
		} else {
			s.Availability.OutOfStock++
		}
		if i == 0 {
			s.PriceRange = &PriceRange{Min: p.Price, Max: p.Price}
			continue
		}
		s.PriceRange.Min = decimal.Min(s.PriceRange.Min, p.Price)
		s.PriceRange.Max = decimal.Max(s.PriceRange.Max, p.Price)
	}
	slices.Sort(s.Sizes)
	return s
}
