package catalog_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/catalog"
	"courtside/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func names[T interface{ Facets() domain.Facets }](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Facets().Name
	}
	return out
}

func TestSearchIsCaseInsensitiveOnNameOrCategory(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Indoor Mat", Category: "Training"},
		{ID: 2, Name: "Outdoor Ball", Category: "Balls"},
	}

	page := catalog.Run(products, catalog.Params{Search: "mat"})
	assert.Equal(t, []string{"Indoor Mat"}, names(page.Items))

	page = catalog.Run(products, catalog.Params{Search: "BALLS"})
	assert.Equal(t, []string{"Outdoor Ball"}, names(page.Items))
}

func TestCourtTypeFilter(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Pro", CourtType: domain.CourtIndoor, Rating: 4},
		{ID: 2, Name: "Street", CourtType: domain.CourtOutdoor, Rating: 3},
	}

	page := catalog.Run(products, catalog.Params{CourtTypes: []string{"Indoor (Pro)"}})
	assert.Equal(t, []string{"Pro"}, names(page.Items))

	page = catalog.Run(products, catalog.Params{})
	assert.Equal(t, []string{"Pro", "Street"}, names(page.Items))
}

func TestSizeFilterOnBothShapes(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Men", Sizes: []int{6, 7}, Rating: 5},
		{ID: 2, Name: "Youth", Sizes: []int{5}, Rating: 4},
		{ID: 3, Name: "Mini", Sizes: []int{3}, Rating: 3},
	}

	page := catalog.Run(products, catalog.Params{Sizes: []int{7, 5}})
	assert.Equal(t, []string{"Men", "Youth"}, names(page.Items))

	listings := domain.Flatten(products)
	lpage := catalog.Run(listings, catalog.Params{Sizes: []int{6}})
	require.Len(t, lpage.Items, 1)
	assert.Equal(t, 6, lpage.Items[0].Size)
	assert.Equal(t, int64(1), lpage.Items[0].ID)
}

func TestPriceRangeIsInclusive(t *testing.T) {
	products := []domain.Product{
		{Name: "ten", Price: dec("10"), Rating: 5},
		{Name: "twenty", Price: dec("20"), Rating: 4},
		{Name: "thirty", Price: dec("30"), Rating: 3},
	}

	page := catalog.Run(products, catalog.Params{MinPrice: ptr(dec("20")), MaxPrice: ptr(dec("30"))})
	assert.Equal(t, []string{"twenty", "thirty"}, names(page.Items))

	page = catalog.Run(products, catalog.Params{MaxPrice: ptr(dec("10"))})
	assert.Equal(t, []string{"ten"}, names(page.Items))

	page = catalog.Run(products, catalog.Params{MinPrice: ptr(dec("30.01"))})
	assert.Empty(t, page.Items)
}

func TestSortIsStable(t *testing.T) {
	products := []domain.Product{
		{Name: "a", Price: dec("20")},
		{Name: "b", Price: dec("10")},
		{Name: "c", Price: dec("20")},
		{Name: "d", Price: dec("10")},
		{Name: "e", Price: dec("30")},
	}

	asc := catalog.Run(products, catalog.Params{Sort: catalog.SortPriceAsc})
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, names(asc.Items))

	desc := catalog.Run(products, catalog.Params{Sort: catalog.SortPriceDesc})
	assert.Equal(t, []string{"e", "a", "c", "b", "d"}, names(desc.Items))
}

func TestSortReversesWithoutTies(t *testing.T) {
	products := []domain.Product{
		{Name: "a", Price: dec("12.5")},
		{Name: "b", Price: dec("3")},
		{Name: "c", Price: dec("99")},
	}

	asc := names(catalog.Run(products, catalog.Params{Sort: catalog.SortPriceAsc}).Items)
	desc := names(catalog.Run(products, catalog.Params{Sort: catalog.SortPriceDesc}).Items)
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestFeaturedSortsByRatingAndNewestByDate(t *testing.T) {
	products := []domain.Product{
		{Name: "old", Rating: 3.5, CreatedAt: "2025-01-01T00:00:00Z"},
		{Name: "undated", Rating: 4.8},
		{Name: "fresh", Rating: 4.1, CreatedAt: "2026-02-01T00:00:00Z"},
		{Name: "broken", Rating: 4.1, CreatedAt: "not a date"},
	}

	featured := catalog.Run(products, catalog.Params{})
	assert.Equal(t, []string{"undated", "fresh", "broken", "old"}, names(featured.Items))

	newest := catalog.Run(products, catalog.Params{Sort: catalog.SortNewest})
	assert.Equal(t, []string{"fresh", "old", "undated", "broken"}, names(newest.Items))
}

func TestPagination(t *testing.T) {
	products := make([]domain.Product, 10)
	for i := range products {
		products[i] = domain.Product{ID: int64(i + 1), Name: fmt.Sprintf("p%d", i+1), Rating: 4}
	}

	p1 := catalog.Run(products, catalog.Params{Page: 1, PageSize: 9})
	assert.Len(t, p1.Items, 9)
	assert.Equal(t, 2, p1.TotalPages)
	assert.Equal(t, 10, p1.Total)
	assert.True(t, p1.HasNext())
	assert.False(t, p1.HasPrev())

	p2 := catalog.Run(products, catalog.Params{Page: 2, PageSize: 9})
	require.Len(t, p2.Items, 1)
	assert.Equal(t, "p10", p2.Items[0].Name)

	p3 := catalog.Run(products, catalog.Params{Page: 3, PageSize: 9})
	assert.NotNil(t, p3.Items)
	assert.Empty(t, p3.Items)
	assert.Equal(t, 2, p3.TotalPages)
	assert.Equal(t, []int{1, 2}, p3.Pages())
}

func TestHugePageNumbersAreEmpty(t *testing.T) {
	items := make([]int, 10)
	for _, page := range []int{math.MaxInt, 1024819115206086202, math.MaxInt / 9} {
		var got catalog.Page[int]
		require.NotPanics(t, func() { got = catalog.Paginate(items, page, 9) })
		assert.NotNil(t, got.Items)
		assert.Empty(t, got.Items)
		assert.Equal(t, 10, got.Total)
		assert.Equal(t, 2, got.TotalPages)
		assert.Equal(t, page, got.Page)
	}

	got := catalog.Paginate(items, 1, math.MaxInt)
	assert.Len(t, got.Items, 10)
	assert.Equal(t, 1, got.TotalPages)
}

func TestDefaultsAndEmptyInput(t *testing.T) {
	page := catalog.Run([]domain.Product{}, catalog.Params{})
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, catalog.DefaultPageSize, page.PageSize)

	page = catalog.Run([]domain.Product{{Name: "x"}}, catalog.Params{Page: -4})
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 1)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	products := []domain.Product{
		{Name: "a", Price: dec("3")},
		{Name: "b", Price: dec("1")},
	}
	_ = catalog.Run(products, catalog.Params{Sort: catalog.SortPriceAsc})
	assert.Equal(t, "a", products[0].Name)
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, catalog.SortPriceAsc, catalog.ParseSortMode("price_asc"))
	assert.Equal(t, catalog.SortPriceDesc, catalog.ParseSortMode("Price: High to Low"))
	assert.Equal(t, catalog.SortNewest, catalog.ParseSortMode("Newest Arrivals"))
	assert.Equal(t, catalog.SortFeatured, catalog.ParseSortMode(""))
	assert.Equal(t, catalog.SortFeatured, catalog.ParseSortMode("cheapest"))
}

func TestSummarize(t *testing.T) {
	products := []domain.Product{
		{CourtType: domain.CourtOutdoor, Sizes: []int{7, 6}, Price: dec("25"), InStock: true},
		{CourtType: domain.CourtIndoor, Sizes: []int{5, 7}, Price: dec("80"), InStock: false},
		{CourtType: domain.CourtOutdoor, Sizes: []int{3}, Price: dec("12.5"), InStock: true},
	}

	s := catalog.Summarize(products)
	assert.Equal(t, []string{domain.CourtOutdoor, domain.CourtIndoor}, s.CourtTypes)
	assert.Equal(t, []int{3, 5, 6, 7}, s.Sizes)
	require.NotNil(t, s.PriceRange)
	assert.True(t, s.PriceRange.Min.Equal(dec("12.5")))
	assert.True(t, s.PriceRange.Max.Equal(dec("80")))
	assert.Equal(t, catalog.Availability{InStock: 2, OutOfStock: 1}, s.Availability)

	assert.Nil(t, catalog.Summarize(nil).PriceRange)
}
