package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/store"
)

// PostgresUsageStore implements the store.UsageStore interface.
type PostgresUsageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUsageStore creates a new PostgreSQL implementation of the
// UsageStore interface. If logger is nil, a default logger will be used.
func NewPostgresUsageStore(db store.DBTX, logger *slog.Logger) *PostgresUsageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUsageStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_store")),
	}
}

// Ensure PostgresUsageStore implements store.UsageStore interface
var _ store.UsageStore = (*PostgresUsageStore)(nil)

// Create implements store.UsageStore.Create.
func (s *PostgresUsageStore) Create(ctx context.Context, record *domain.UsageRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (id, user_id, kind, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.ID, record.UserID, string(record.Kind), record.CreatedAt)
	if err != nil {
		log.Error("failed to create usage record",
			slog.String("error", err.Error()),
			slog.String("user_id", record.UserID.String()),
			slog.String("kind", string(record.Kind)))
		return store.NewStoreError("usage_record", "create", "insert failed", MapError(err))
	}

	log.Debug("usage record created",
		slog.String("user_id", record.UserID.String()),
		slog.String("kind", string(record.Kind)))
	return nil
}

// CountSince implements store.UsageStore.CountSince.
func (s *PostgresUsageStore) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM usage_records
		WHERE user_id = $1 AND created_at >= $2
	`, userID, since).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count usage records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("usage_record", "count", "query failed", MapError(err))
	}
	return count, nil
}
