package services

import (
	"courtside/internal/catalog"
	"courtside/internal/domain"
	applog "courtside/internal/log"
)

// ProductReader is the read side of the product store.
type ProductReader interface {
	Load() (domain.CatalogFile, error)
	Get(id int64) (domain.Product, error)
}

type CatalogService struct {
	Prods    ProductReader
	PageSize int
}

func NewCatalogService(prods ProductReader, pageSize int) *CatalogService {
	return &CatalogService{Prods: prods, PageSize: pageSize}
}

// CatalogView is one catalog page. Unavailable is set when the product store could not be
// read; the page is then empty.
type CatalogView[T any] struct {
	catalog.Page[T]
	Unavailable bool `json:"unavailable,omitempty"`
}

type FacetOptions struct {
	catalog.Summary
	SizeOptions      []int    `json:"sizeOptions"`
	CourtTypeOptions []string `json:"courtTypeOptions"`
}

func (s *CatalogService) load() ([]domain.Product, bool) {
	f, err := s.Prods.Load()
	if err != nil {
		applog.Error(nil, "catalog.load", err, nil)
		return []domain.Product{}, false
	}
	return f.Products, true
}

func (s *CatalogService) params(p catalog.Params) catalog.Params {
	if p.PageSize <= 0 {
		p.PageSize = s.PageSize
	}
	return p
}

// Browse runs the catalog pipeline over multi-size products.
func (s *CatalogService) Browse(p catalog.Params) CatalogView[domain.Product] {
	products, ok := s.load()
	return CatalogView[domain.Product]{Page: catalog.Run(products, s.params(p)), Unavailable: !ok}
}

// BrowseListings runs the pipeline over one listing per product size.
func (s *CatalogService) BrowseListings(p catalog.Params) CatalogView[domain.Listing] {
	products, ok := s.load()
	return CatalogView[domain.Listing]{Page: catalog.Run(domain.Flatten(products), s.params(p)), Unavailable: !ok}
}

func (s *CatalogService) Get(id int64) (domain.Product, error) {
	return s.Prods.Get(id)
}

// Featured returns up to n products in featured order.
func (s *CatalogService) Featured(n int) []domain.Product {
	products, _ := s.load()
	return catalog.Run(products, catalog.Params{Sort: catalog.SortFeatured, PageSize: n}).Items
}

// Facets describes the filters the storefront can offer. The option lists come from the
// data file, falling back to the built-in vocabularies.
func (s *CatalogService) Facets() (FacetOptions, error) {
	f, err := s.Prods.Load()
	if err != nil {
		return FacetOptions{}, err
	}
	out := FacetOptions{Summary: catalog.Summarize(f.Products), SizeOptions: f.Sizes, CourtTypeOptions: f.CourtTypes}
	if len(out.SizeOptions) == 0 {
		out.SizeOptions = domain.Sizes
	}
	if len(out.CourtTypeOptions) == 0 {
		out.CourtTypeOptions = domain.CourtTypes
	}
	return out, nil
}
