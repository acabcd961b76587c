package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var gatewayKeyColumns = []string{"id", "name", "api_key_hash", "is_active", "created_at", "updated_at"}

func TestGatewayKeyRepository_GetByAPIKey(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGatewayKeyRepository(db, zaptest.NewLogger(t))
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	require.NoError(t, err)
	otherHash, err := bcrypt.GenerateFromPassword([]byte("other-key"), bcrypt.MinCost)
	require.NoError(t, err)

	matchID := uuid.New()
	now := time.Now()
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(gatewayKeyColumns).
			AddRow(uuid.New().String(), "other", string(otherHash), true, now, now).
			AddRow(matchID.String(), "agent", string(hash), true, now, now)
	}

	query := regexp.QuoteMeta("FROM gateway_keys")

	t.Run("match", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnRows(rows())

		key, err := repo.GetByAPIKey(ctx, "secret-key")
		require.NoError(t, err)
		assert.Equal(t, matchID, key.ID)
		assert.Equal(t, "agent", key.Name)
	})

	t.Run("no match", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnRows(rows())

		_, err := repo.GetByAPIKey(ctx, "wrong-key")
		require.Error(t, err)
		assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayKeyRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGatewayKeyRepository(db, zaptest.NewLogger(t))
	ctx := context.Background()

	id := uuid.New()
	query := regexp.QuoteMeta("FROM gateway_keys")

	mock.ExpectQuery(query).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(gatewayKeyColumns).AddRow(id.String(), "agent", "hash", true, time.Now(), time.Now()))

	key, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, key.ID)

	mock.ExpectQuery(query).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(gatewayKeyColumns))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayKeyRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGatewayKeyRepository(db, zaptest.NewLogger(t))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO gateway_keys")).
		WithArgs(sqlmock.AnyArg(), "agent", "hash", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	key := &domain.GatewayKey{Name: "agent", APIKeyHash: "hash", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), key))

	assert.NotEqual(t, uuid.Nil, key.ID)
	assert.False(t, key.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayKeyRepository_Deactivate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGatewayKeyRepository(db, zaptest.NewLogger(t))
	query := regexp.QuoteMeta("UPDATE gateway_keys")

	mock.ExpectExec(query).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Deactivate(context.Background(), uuid.New()))

	mock.ExpectExec(query).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Deactivate(context.Background(), uuid.New())
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvocationRepository_Record(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvocationRepository(db, zaptest.NewLogger(t))

	t.Run("anonymous caller", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invocations")).
			WithArgs(sqlmock.AnyArg(), "add-to-cart", "command", true, "validation", int64(3), nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		inv := &domain.Invocation{
			Operation:  "add-to-cart",
			Kind:       domain.OperationCommand,
			IsError:    true,
			ErrorKind:  "validation",
			DurationMs: 3,
		}
		require.NoError(t, repo.Record(context.Background(), inv))
		assert.NotEqual(t, uuid.Nil, inv.ID)
	})

	t.Run("database failure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invocations")).
			WillReturnError(sql.ErrConnDone)

		err := repo.Record(context.Background(), &domain.Invocation{Operation: "checkout", Kind: domain.OperationCommand})
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvocationRepository_ListRecent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInvocationRepository(db, zaptest.NewLogger(t))

	keyID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "operation", "kind", "is_error", "error_kind", "duration_ms", "gateway_key_id", "created_at"}).
		AddRow(uuid.New().String(), "checkout", "command", false, "", int64(120), keyID.String(), time.Now()).
		AddRow(uuid.New().String(), "products", "resource", true, "transport", int64(20000), nil, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM invocations")).
		WithArgs(50).
		WillReturnRows(rows)

	invocations, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, invocations, 2)

	assert.Equal(t, domain.OperationCommand, invocations[0].Kind)
	require.NotNil(t, invocations[0].GatewayKeyID)
	assert.Equal(t, keyID, *invocations[0].GatewayKeyID)

	assert.Equal(t, domain.OperationResource, invocations[1].Kind)
	assert.Nil(t, invocations[1].GatewayKeyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
