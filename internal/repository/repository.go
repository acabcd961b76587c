package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jafarshop/shopgateway/internal/domain"
)

// GatewayKeyRepository stores the API keys gateway clients authenticate with
type GatewayKeyRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.GatewayKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GatewayKey, error)
	Create(ctx context.Context, key *domain.GatewayKey) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// InvocationRepository is the append-only invocation ledger
type InvocationRepository interface {
	Record(ctx context.Context, inv *domain.Invocation) error
	ListRecent(ctx context.Context, limit int) ([]domain.Invocation, error)
}

// Repositories groups every repository backed by the same database
type Repositories struct {
	GatewayKey GatewayKeyRepository
	Invocation InvocationRepository
}
