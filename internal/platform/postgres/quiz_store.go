package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/store"
)

// PostgresQuizStore implements the store.QuizStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuizStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresQuizStore creates a new PostgreSQL implementation of the QuizStore
// interface. If logger is nil, a default logger will be used.
func NewPostgresQuizStore(db *sql.DB, logger *slog.Logger) *PostgresQuizStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuizStore{
		db:     db,
		logger: logger.With(slog.String("component", "quiz_store")),
	}
}

// Ensure PostgresQuizStore implements store.QuizStore interface
var _ store.QuizStore = (*PostgresQuizStore)(nil)

// Create implements store.QuizStore.Create.
// The quiz row and every question row are inserted in one transaction.
// Answer choices are stored as a JSONB array in their current order.
func (s *PostgresQuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := quiz.Validate(); err != nil {
		log.Warn("quiz validation failed during create",
			slog.String("error", err.Error()),
			slog.String("quiz_id", quiz.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quizzes (id, public_id, user_id, title, description, difficulty, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			quiz.ID,
			quiz.PublicID,
			quiz.UserID,
			quiz.Title,
			quiz.Description,
			string(quiz.Difficulty),
			quiz.CreatedAt,
		)
		if err != nil {
			return store.NewStoreError("quiz", "create", "failed to insert quiz", MapError(err))
		}

		for _, q := range quiz.Questions {
			answers, err := json.Marshal(q.PossibleAnswers)
			if err != nil {
				return store.NewStoreError("quiz_question", "create", "failed to encode answers", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO quiz_questions (id, quiz_id, position, question, possible_answers, correct_answer)
				VALUES ($1, $2, $3, $4, $5, $6)
			`,
				q.ID,
				quiz.ID,
				q.Position,
				q.Question,
				string(answers),
				q.CorrectAnswer,
			)
			if err != nil {
				return store.NewStoreError("quiz_question", "create", "failed to insert question", MapError(err))
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create quiz",
			slog.String("error", err.Error()),
			slog.String("quiz_id", quiz.ID.String()),
			slog.String("user_id", quiz.UserID.String()))
		return err
	}

	log.Info("quiz created successfully",
		slog.String("quiz_id", quiz.ID.String()),
		slog.String("user_id", quiz.UserID.String()),
		slog.Int("questions", len(quiz.Questions)))
	return nil
}

// ListByUser implements store.QuizStore.ListByUser.
func (s *PostgresQuizStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Quiz, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.public_id, q.user_id, q.title, q.description, q.difficulty, q.created_at,
		       qq.id, qq.position, qq.question, qq.possible_answers, qq.correct_answer
		FROM (
			SELECT id, public_id, user_id, title, description, difficulty, created_at
			FROM quizzes
			WHERE user_id = $1
			ORDER BY created_at DESC, id
			LIMIT $2 OFFSET $3
		) q
		JOIN quiz_questions qq ON qq.quiz_id = q.id
		ORDER BY q.created_at DESC, q.id, qq.position
	`, userID, limit, offset)
	if err != nil {
		log.Error("failed to list quizzes",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("quiz", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	quizzes := make([]*domain.Quiz, 0)
	var current *domain.Quiz
	for rows.Next() {
		var (
			quiz       domain.Quiz
			difficulty string
			question   domain.QuizQuestion
			answers    []byte
		)
		if err := rows.Scan(
			&quiz.ID,
			&quiz.PublicID,
			&quiz.UserID,
			&quiz.Title,
			&quiz.Description,
			&difficulty,
			&quiz.CreatedAt,
			&question.ID,
			&question.Position,
			&question.Question,
			&answers,
			&question.CorrectAnswer,
		); err != nil {
			return nil, store.NewStoreError("quiz", "list", "scan failed", err)
		}
		if err := json.Unmarshal(answers, &question.PossibleAnswers); err != nil {
			return nil, store.NewStoreError("quiz_question", "list", "failed to decode answers", err)
		}

		if current == nil || current.ID != quiz.ID {
			quiz.Difficulty = domain.Difficulty(difficulty)
			current = &quiz
			quizzes = append(quizzes, current)
		}
		question.QuizID = current.ID
		current.Questions = append(current.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("quiz", "list", "row iteration failed", MapError(err))
	}

	log.Debug("listed quizzes",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(quizzes)))
	return quizzes, nil
}
