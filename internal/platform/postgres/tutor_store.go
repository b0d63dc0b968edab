package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/store"
)

// PostgresTutorStore implements store.TutorStore and store.MessageStore.
// Tutors and their messages share one table family, so one type serves both.
type PostgresTutorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTutorStore creates a new PostgreSQL tutor and message store.
// If logger is nil, a default logger will be used.
func NewPostgresTutorStore(db store.DBTX, logger *slog.Logger) *PostgresTutorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTutorStore{
		db:     db,
		logger: logger.With(slog.String("component", "tutor_store")),
	}
}

var (
	_ store.TutorStore   = (*PostgresTutorStore)(nil)
	_ store.MessageStore = (*PostgresTutorStore)(nil)
)

// GetForUser implements store.TutorStore.GetForUser.
// A tutor owned by a different user is reported as not found.
func (s *PostgresTutorStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Tutor, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var tutor domain.Tutor
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, source, created_at
		FROM tutors
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&tutor.ID,
		&tutor.UserID,
		&tutor.Name,
		&tutor.Source,
		&tutor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("tutor not found",
				slog.String("tutor_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTutorNotFound
		}
		log.Error("failed to get tutor",
			slog.String("error", err.Error()),
			slog.String("tutor_id", id.String()))
		return nil, store.NewStoreError("tutor", "get", "query failed", MapError(err))
	}

	return &tutor, nil
}

// Create implements store.MessageStore.Create.
func (s *PostgresTutorStore) Create(ctx context.Context, msg *domain.ChatMessage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, tutor_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.TutorID, msg.UserID, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		log.Error("failed to create chat message",
			slog.String("error", err.Error()),
			slog.String("tutor_id", msg.TutorID.String()),
			slog.String("role", string(msg.Role)))
		return store.NewStoreError("chat_message", "create", "insert failed", MapError(err))
	}

	log.Debug("chat message created",
		slog.String("tutor_id", msg.TutorID.String()),
		slog.String("role", string(msg.Role)),
		slog.Int("length", len(msg.Content)))
	return nil
}
