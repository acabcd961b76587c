package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/terminal"
)

// AccountService covers the profile, saved addresses and cards,
// subscriptions and personal access tokens.
type AccountService struct {
	upstream Upstream
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(upstream Upstream, logger *zap.Logger) *AccountService {
	return &AccountService{
		upstream: upstream,
		logger:   logger,
	}
}

func (s *AccountService) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var profile domain.Profile
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathProfile, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var profile domain.Profile
	if err := s.upstream.Call(ctx, http.MethodPut, terminal.PathProfile, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *AccountService) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var addresses []domain.Address
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathAddresses, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// CreateAddress saves a shipping address and returns its ID
func (s *AccountService) CreateAddress(ctx context.Context, in CreateAddressInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var addressID string
	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathAddresses, in, &addressID); err != nil {
		return "", err
	}
	return addressID, nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, addressID string) error {
	if err := requireID("addressId", addressID); err != nil {
		return err
	}
	return s.upstream.Call(ctx, http.MethodDelete, terminal.ItemPath(terminal.PathAddresses, addressID), nil, nil)
}

func (s *AccountService) ListCards(ctx context.Context) ([]domain.Card, error) {
	var cards []domain.Card
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathCards, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CollectCard returns a hosted URL where the user can enter card details
func (s *AccountService) CollectCard(ctx context.Context) (*domain.CardCollection, error) {
	var collection domain.CardCollection
	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathCardCollect, nil, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// CreateCard exchanges a payment processor token for a stored card and returns its ID
func (s *AccountService) CreateCard(ctx context.Context, in CreateCardInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var cardID string
	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathCards, in, &cardID); err != nil {
		return "", err
	}
	return cardID, nil
}

func (s *AccountService) DeleteCard(ctx context.Context, cardID string) error {
	if err := requireID("cardId", cardID); err != nil {
		return err
	}
	return s.upstream.Call(ctx, http.MethodDelete, terminal.ItemPath(terminal.PathCards, cardID), nil, nil)
}

func (s *AccountService) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	var subscriptions []domain.Subscription
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathSubscriptions, nil, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (s *AccountService) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathSubscriptions, in, nil); err != nil {
		return err
	}

	s.logger.Info("Subscription created",
		zap.String("product_variant_id", in.ProductVariantID),
		zap.String("schedule", string(in.Schedule.Type)),
	)
	return nil
}

func (s *AccountService) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if err := requireID("subscriptionId", subscriptionID); err != nil {
		return err
	}
	return s.upstream.Call(ctx, http.MethodDelete, terminal.ItemPath(terminal.PathSubscriptions, subscriptionID), nil, nil)
}

// CreateToken creates a personal access token. The token value is only
// available in this response.
func (s *AccountService) CreateToken(ctx context.Context) (*domain.AccessToken, error) {
	var token domain.AccessToken
	if err := s.upstream.Call(ctx, http.MethodPost, terminal.PathTokens, nil, &token); err != nil {
		return nil, err
	}

	s.logger.Info("Access token created", zap.String("token_id", token.ID))
	return &token, nil
}

func (s *AccountService) DeleteToken(ctx context.Context, tokenID string) error {
	if err := requireID("tokenId", tokenID); err != nil {
		return err
	}
	return s.upstream.Call(ctx, http.MethodDelete, terminal.ItemPath(terminal.PathTokens, tokenID), nil, nil)
}

// GetAppData fetches the aggregated account view in one call
func (s *AccountService) GetAppData(ctx context.Context) (*domain.AppData, error) {
	var data domain.AppData
	if err := s.upstream.Call(ctx, http.MethodGet, terminal.PathAppInit, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
