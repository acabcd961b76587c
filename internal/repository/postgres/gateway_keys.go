package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

type gatewayKeyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGatewayKeyRepository creates a new gateway key repository
func NewGatewayKeyRepository(db *sql.DB, logger *zap.Logger) *gatewayKeyRepository {
	return &gatewayKeyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByAPIKey finds the active key matching apiKey. bcrypt hashes are
// salted, so every active key is compared in turn.
func (r *gatewayKeyRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.GatewayKey, error) {
	query := `
		SELECT id, name, api_key_hash, is_active, created_at, updated_at
		FROM gateway_keys
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query gateway keys", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key domain.GatewayKey
		err := rows.Scan(
			&key.ID,
			&key.Name,
			&key.APIKeyHash,
			&key.IsActive,
			&key.CreatedAt,
			&key.UpdatedAt,
		)
		if err != nil {
			r.logger.Warn("Skipping unreadable gateway key row", zap.Error(err))
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(key.APIKeyHash), []byte(apiKey)); err == nil {
			return &key, nil
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate gateway keys", zap.Error(err))
		return nil, err
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *gatewayKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GatewayKey, error) {
	query := `
		SELECT id, name, api_key_hash, is_active, created_at, updated_at
		FROM gateway_keys
		WHERE id = $1
	`

	var key domain.GatewayKey
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&key.ID,
		&key.Name,
		&key.APIKeyHash,
		&key.IsActive,
		&key.CreatedAt,
		&key.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "gateway key", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get gateway key by ID", zap.Error(err))
		return nil, err
	}

	return &key, nil
}

func (r *gatewayKeyRepository) Create(ctx context.Context, key *domain.GatewayKey) error {
	query := `
		INSERT INTO gateway_keys (id, name, api_key_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now
	}
	if key.UpdatedAt.IsZero() {
		key.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.Name,
		key.APIKeyHash,
		key.IsActive,
		key.CreatedAt,
		key.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create gateway key", zap.Error(err))
		return err
	}

	return nil
}

func (r *gatewayKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE gateway_keys
		SET is_active = false, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to deactivate gateway key", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "gateway key", ID: id.String()}
	}

	return nil
}
