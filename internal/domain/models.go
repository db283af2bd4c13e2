package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// products.json stores prices as bare numbers.
func init() { decimal.MarshalJSONWithoutQuotes = true }

const (
	CourtIndoor  = "Indoor (Pro)"
	CourtOutdoor = "Outdoor (Street)"
	CourtHybrid  = "Hybrid / All-Surface"
	Court3x3     = "3x3 Official"
)

// CourtTypes is the fixed court-type vocabulary used when the data file does not carry one.
var CourtTypes = []string{CourtIndoor, CourtOutdoor, CourtHybrid, Court3x3}

// Sizes is the default ball-size vocabulary.
var Sizes = []int{3, 5, 6, 7}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type Media struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

// Product is the multi-size record managed from the admin panel.
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	MainCategory  string           `json:"mainCategory,omitempty"`
	Category      string           `json:"category"`
	Sizes         []int            `json:"sizes"`
	CourtType     string           `json:"courtType"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        float64          `json:"rating"`
	InStock       bool             `json:"inStock"`
	CreatedAt     string           `json:"createdAt,omitempty"`
	Image         string           `json:"image"`
	Media         []Media          `json:"media,omitempty"`
	Description   string           `json:"description,omitempty"`
	Features      []string         `json:"features,omitempty"`
	Badge         string           `json:"badge,omitempty"`
}

// Listing is one purchasable size of a product, as shown in flattened list views.
type Listing struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	MainCategory  string           `json:"mainCategory,omitempty"`
	Category      string           `json:"category"`
	Size          int              `json:"size"`
	CourtType     string           `json:"courtType"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        float64          `json:"rating"`
	InStock       bool             `json:"inStock"`
	CreatedAt     string           `json:"createdAt,omitempty"`
	Image         string           `json:"image"`
}

// CatalogFile is the on-disk shape of the product data file.
type CatalogFile struct {
	Products   []Product `json:"products"`
	Sizes      []int     `json:"sizes"`
	CourtTypes []string  `json:"courtTypes"`
}

// Facets is the read-only view the catalog pipeline filters and sorts on.
type Facets struct {
	Name      string
	Category  string
	CourtType string
	Price     decimal.Decimal
	Rating    float64
	CreatedAt string
	Sizes     []int
}

func (p Product) Facets() Facets {
	return Facets{
		Name:      p.Name,
		Category:  p.Category,
		CourtType: p.CourtType,
		Price:     p.Price,
		Rating:    p.Rating,
		CreatedAt: p.CreatedAt,
		Sizes:     p.Sizes,
	}
}

func (l Listing) Facets() Facets {
	return Facets{
		Name:      l.Name,
		Category:  l.Category,
		CourtType: l.CourtType,
		Price:     l.Price,
		Rating:    l.Rating,
		CreatedAt: l.CreatedAt,
		Sizes:     []int{l.Size},
	}
}

// OffersSize reports whether size is one of the product's sizes.
func (p Product) OffersSize(size int) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Flatten expands each product into one listing per size, keeping product order.
func Flatten(products []Product) []Listing {
	out := make([]Listing, 0, len(products))
	for _, p := range products {
		for _, s := range p.Sizes {
			out = append(out, Listing{
				ID:            p.ID,
				Name:          p.Name,
				MainCategory:  p.MainCategory,
				Category:      p.Category,
				Size:          s,
				CourtType:     p.CourtType,
				Price:         p.Price,
				OriginalPrice: p.OriginalPrice,
				Rating:        p.Rating,
				InStock:       p.InStock,
				CreatedAt:     p.CreatedAt,
				Image:         p.Image,
			})
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses an ISO 8601 timestamp; ok is false when s is empty or malformed.
func ParseCreatedAt(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsNewProduct reports whether createdAt is at most 5 whole days before now.
func IsNewProduct(createdAt string, now time.Time) bool {
	created, ok := ParseCreatedAt(createdAt)
	if !ok {
		return false
	}
	days := now.Sub(created) / (24 * time.Hour)
	return days <= 5
}

// DiscountPercent returns the rounded percentage off originalPrice, or 0 when there is no discount.
func DiscountPercent(price decimal.Decimal, originalPrice *decimal.Decimal) int {
	if originalPrice == nil || !originalPrice.GreaterThan(price) {
		return 0
	}
	pct := originalPrice.Sub(price).Div(*originalPrice).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

func (p Product) DiscountPercent() int { return DiscountPercent(p.Price, p.OriginalPrice) }

func (l Listing) DiscountPercent() int { return DiscountPercent(l.Price, l.OriginalPrice) }
