package service

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/terminal"
)

type CatalogService struct {
	upstream Upstream
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(upstream Upstream, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		upstream: upstream,
		logger:   logger,
	}
}

// ListProducts returns every product in the shop
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathProducts, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by ID
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if err := requireID("productId", productID); err != nil {
		return nil, err
	}

	var product domain.Product
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.ItemPath(terminal.PathProducts, productID), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchProducts filters products whose name or description contains query,
// ignoring case. An empty query matches everything.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return FilterProducts(products, query), nil
}

// FilterProducts is the matching rule used by SearchProducts
func FilterProducts(products []domain.Product, query string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return products
	}

	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// VariantMatch pairs a variant with the product it belongs to
type VariantMatch struct {
	Product domain.Product
	Variant domain.Variant
}

// FindVariants returns variants whose ID matches term exactly or whose
// product or variant name contains it.
func (s *CatalogService) FindVariants(ctx context.Context, term string) ([]VariantMatch, error) {
	if err := requireID("term", term); err != nil {
		return nil, err
	}

	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	var matches []VariantMatch
	for _, p := range products {
		productHit := strings.Contains(strings.ToLower(p.Name), needle)
		for _, v := range p.Variants {
			if productHit || v.ID == term || strings.Contains(strings.ToLower(v.Name), needle) {
				matches = append(matches, VariantMatch{Product: p, Variant: v})
			}
		}
	}

	s.logger.Debug("Variant search finished",
		zap.String("term", term),
		zap.Int("products", len(products)),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}
