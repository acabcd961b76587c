package service

import (
	"context"

	"go.uber.org/zap"
)

// Upstream is the transport the services call through. *terminal.Client
// satisfies it.
type Upstream interface {
	Call(ctx context.Context, method, path string, body, out interface{}) error
}

// Services groups the typed upstream services
type Services struct {
	Catalog *CatalogService
	Cart    *CartService
	Account *AccountService
}

// NewServices wires every service to the same upstream
func NewServices(upstream Upstream, logger *zap.Logger) *Services {
	return &Services{
		Catalog: NewCatalogService(upstream, logger),
		Cart:    NewCartService(upstream, logger),
		Account: NewAccountService(upstream, logger),
	}
}
