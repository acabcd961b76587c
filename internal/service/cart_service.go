package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/terminal"
)

type CartService struct {
	upstream Upstream
	logger   *zap.Logger
}

// NewCartService creates a new cart and order service
func NewCartService(upstream Upstream, logger *zap.Logger) *CartService {
	return &CartService{
		upstream: upstream,
		logger:   logger,
	}
}

// GetCart returns the caller's current cart
func (s *CartService) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathCart, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem sets a variant's quantity in the cart and returns the updated cart
func (s *CartService) AddItem(ctx context.Context, in AddCartItemInput) (*domain.Cart, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var cart domain.Cart
	if err := s.upstream.Call(ctx, http.MethodPut, terminal.PathCartItem, in, &cart); err != nil {
		return nil, err
	}

	s.logger.Info("Cart item updated",
		zap.String("product_variant_id", in.ProductVariantID),
		zap.Int("quantity", in.Quantity),
		zap.Int("items", len(cart.Items)),
	)
	return &cart, nil
}

// SetAddress selects the shipping address for the cart
func (s *CartService) SetAddress(ctx context.Context, in SetCartAddressInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.upstream.Call(ctx, http.MethodPut, terminal.PathCartAddress, in, nil)
}

// SetCard selects the payment card for the cart
func (s *CartService) SetCard(ctx context.Context, in SetCartCardInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.upstream.Call(ctx, http.MethodPut, terminal.PathCartCard, in, nil)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context) error {
	return s.upstream.Call(ctx, http.MethodDelete, terminal.PathCart, nil, nil)
}

// Convert turns the cart into an order
func (s *CartService) Convert(ctx context.Context) (*domain.Order, error) {
	var order domain.Order
	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathCartConvert, nil, &order); err != nil {
		return nil, err
	}

	s.logger.Info("Cart converted to order", zap.String("order_id", order.ID))
	return &order, nil
}

// ListOrders returns the caller's order history
func (s *CartService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathOrders, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder places an order without going through the cart and returns its ID
func (s *CartService) CreateOrder(ctx context.Context, in CreateOrderInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var orderID string
	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathOrders, in, &orderID); err != nil {
		return "", err
	}

	s.logger.Info("Order created",
		zap.String("order_id", orderID),
		zap.Int("variants", len(in.Variants)),
	)
	return orderID, nil
}
