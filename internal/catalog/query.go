// Package catalog filters, sorts and paginates an in-memory product list.
// Every function here is pure: the same items and parameters always yield the same page.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"courtside/internal/domain"
)

// DefaultPageSize matches the nine-card storefront grid.
const DefaultPageSize = 9

type SortMode string

const (
	SortFeatured  SortMode = "featured"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNewest    SortMode = "newest"
)

var sortLabels = map[string]SortMode{
	"featured":           SortFeatured,
	"price: low to high": SortPriceAsc,
	"price: high to low": SortPriceDesc,
	"newest arrivals":    SortNewest,
}

// ParseSortMode accepts a mode name or a storefront label; anything else is SortFeatured.
func ParseSortMode(s string) SortMode {
	s = strings.ToLower(strings.TrimSpace(s))
	switch m := SortMode(s); m {
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortNewest:
		return m
	}
	if m, ok := sortLabels[s]; ok {
		return m
	}
	return SortFeatured
}

// Faceted is implemented by both product shapes (multi-size and single-size listing).
type Faceted interface {
	Facets() domain.Facets
}

type Params struct {
	Search     string
	CourtTypes []string
	Sizes      []int
	// Bounds are the last applied values; nil means unbounded.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortMode
	Page     int
	PageSize int
}

// Filtered reports whether any predicate is active.
func (p Params) Filtered() bool {
	return p.Search != "" || len(p.CourtTypes) > 0 || len(p.Sizes) > 0 || p.MinPrice != nil || p.MaxPrice != nil
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Pages lists page numbers 1..TotalPages for pagination controls.
func (p Page[T]) Pages() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

type entry[T any] struct {
	item   T
	facets domain.Facets
}

// Run applies search, court-type, size and price filters in that order, stable-sorts the
// survivors and returns the requested page.
func Run[T Faceted](items []T, p Params) Page[T] {
	entries := make([]entry[T], 0, len(items))
	for _, it := range items {
		f := it.Facets()
		if matches(f, p) {
			entries = append(entries, entry[T]{item: it, facets: f})
		}
	}

	less := comparator(p.Sort)
	slices.SortStableFunc(entries, func(a, b entry[T]) int { return less(a.facets, b.facets) })

	filtered := make([]T, len(entries))
	for i, e := range entries {
		filtered[i] = e.item
	}
	return Paginate(filtered, p.Page, p.PageSize)
}

// Paginate returns the 1-based page of items. Pages past the end are empty, never an error.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	out := Page[T]{
		Items:      []T{},
		Total:      total,
		TotalPages: pageCount(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}
	// compare page numbers first; (page-1)*pageSize overflows for huge pages
	if page > out.TotalPages {
		return out
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	out.Items = append(out.Items, items[start:end]...)
	return out
}

func matches(f domain.Facets, p Params) bool {
	return matchSearch(f, p.Search) &&
		matchCourt(f, p.CourtTypes) &&
		matchSize(f, p.Sizes) &&
		matchPrice(f, p.MinPrice, p.MaxPrice)
}

func matchSearch(f domain.Facets, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(f.Name), q) || strings.Contains(strings.ToLower(f.Category), q)
}

func matchCourt(f domain.Facets, courts []string) bool {
	return len(courts) == 0 || slices.Contains(courts, f.CourtType)
}

func matchSize(f domain.Facets, sizes []int) bool {
	if len(sizes) == 0 {
		return true
	}
	for _, s := range f.Sizes {
		if slices.Contains(sizes, s) {
			return true
		}
	}
	return false
}

func matchPrice(f domain.Facets, lo, hi *decimal.Decimal) bool {
	if lo != nil && f.Price.LessThan(*lo) {
		return false
	}
	if hi != nil && f.Price.GreaterThan(*hi) {
		return false
	}
	return true
}

func pageCount(total, pageSize int) int {
	n := total / pageSize
	if total%pageSize != 0 {
		n++
	}
	return n
}
