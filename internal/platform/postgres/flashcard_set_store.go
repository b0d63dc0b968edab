package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/store"
)

// PostgresFlashcardSetStore implements the store.FlashcardSetStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardSetStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresFlashcardSetStore creates a new PostgreSQL implementation of the
// FlashcardSetStore interface. If logger is nil, a default logger will be used.
func NewPostgresFlashcardSetStore(db *sql.DB, logger *slog.Logger) *PostgresFlashcardSetStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardSetStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_set_store")),
	}
}

// Ensure PostgresFlashcardSetStore implements store.FlashcardSetStore interface
var _ store.FlashcardSetStore = (*PostgresFlashcardSetStore)(nil)

// Create implements store.FlashcardSetStore.Create.
// The set row and every flashcard row are inserted in one transaction.
func (s *PostgresFlashcardSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := set.Validate(); err != nil {
		log.Warn("flashcard set validation failed during create",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO flashcard_sets (id, public_id, user_id, title, description, difficulty, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			set.ID,
			set.PublicID,
			set.UserID,
			set.Title,
			set.Description,
			string(set.Difficulty),
			set.CreatedAt,
		)
		if err != nil {
			return store.NewStoreError("flashcard_set", "create", "failed to insert set", MapError(err))
		}

		for _, card := range set.Flashcards {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO flashcards (id, set_id, position, question, answer)
				VALUES ($1, $2, $3, $4, $5)
			`,
				card.ID,
				set.ID,
				card.Position,
				card.Question,
				card.Answer,
			)
			if err != nil {
				return store.NewStoreError("flashcard", "create", "failed to insert flashcard", MapError(err))
			}
		}
		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Warn("public id collision while creating flashcard set",
				slog.String("set_id", set.ID.String()))
		}
		log.Error("failed to create flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()),
			slog.String("user_id", set.UserID.String()))
		return err
	}

	log.Info("flashcard set created successfully",
		slog.String("set_id", set.ID.String()),
		slog.String("user_id", set.UserID.String()),
		slog.Int("flashcards", len(set.Flashcards)))
	return nil
}

// ListByUser implements store.FlashcardSetStore.ListByUser.
// Sets and their flashcards are read with a single joined query.
func (s *PostgresFlashcardSetStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.public_id, s.user_id, s.title, s.description, s.difficulty, s.created_at,
		       f.id, f.position, f.question, f.answer
		FROM (
			SELECT id, public_id, user_id, title, description, difficulty, created_at
			FROM flashcard_sets
			WHERE user_id = $1
			ORDER BY created_at DESC, id
			LIMIT $2 OFFSET $3
		) s
		JOIN flashcards f ON f.set_id = s.id
		ORDER BY s.created_at DESC, s.id, f.position
	`, userID, limit, offset)
	if err != nil {
		log.Error("failed to list flashcard sets",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("flashcard_set", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	sets := make([]*domain.FlashcardSet, 0)
	var current *domain.FlashcardSet
	for rows.Next() {
		var (
			set        domain.FlashcardSet
			difficulty string
			card       domain.Flashcard
		)
		if err := rows.Scan(
			&set.ID,
			&set.PublicID,
			&set.UserID,
			&set.Title,
			&set.Description,
			&difficulty,
			&set.CreatedAt,
			&card.ID,
			&card.Position,
			&card.Question,
			&card.Answer,
		); err != nil {
			return nil, store.NewStoreError("flashcard_set", "list", "scan failed", err)
		}

		if current == nil || current.ID != set.ID {
			set.Difficulty = domain.Difficulty(difficulty)
			current = &set
			sets = append(sets, current)
		}
		card.SetID = current.ID
		current.Flashcards = append(current.Flashcards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("flashcard_set", "list", "row iteration failed", MapError(err))
	}

	log.Debug("listed flashcard sets",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(sets)))
	return sets, nil
}
