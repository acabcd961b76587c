package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/domain"
)

type invocationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvocationRepository creates a new invocation ledger repository
func NewInvocationRepository(db *sql.DB, logger *zap.Logger) *invocationRepository {
	return &invocationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invocationRepository) Record(ctx context.Context, inv *domain.Invocation) error {
	query := `
		INSERT INTO invocations (id, operation, kind, is_error, error_kind, duration_ms, gateway_key_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	var keyID interface{}
	if inv.GatewayKeyID != nil {
		keyID = *inv.GatewayKeyID
	}

	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.Operation,
		string(inv.Kind),
		inv.IsError,
		inv.ErrorKind,
		inv.DurationMs,
		keyID,
		inv.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record invocation", zap.Error(err))
		return err
	}

	return nil
}

// ListRecent returns the latest invocations, newest first
func (r *invocationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Invocation, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, operation, kind, is_error, error_kind, duration_ms, gateway_key_id, created_at
		FROM invocations
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list invocations", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var invocations []domain.Invocation
	for rows.Next() {
		var (
			inv   domain.Invocation
			kind  string
			keyID uuid.NullUUID
		)
		if err := rows.Scan(
			&inv.ID,
			&inv.Operation,
			&kind,
			&inv.IsError,
			&inv.ErrorKind,
			&inv.DurationMs,
			&keyID,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}

		inv.Kind = domain.OperationKind(kind)
		if keyID.Valid {
			id := keyID.UUID
			inv.GatewayKeyID = &id
		}
		invocations = append(invocations, inv)
	}

	return invocations, rows.Err()
}
