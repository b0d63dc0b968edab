package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/redact"
	"github.com/phrazzld/studygen-api/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Writer stores validated content and then records the usage it consumed.
//
// The content write is atomic on its own. The usage write happens only after
// it succeeds, so usage is never charged for content that was not stored. If
// the usage write fails, the stored entity is still returned together with an
// error matching generation.ErrUsageNotRecorded.
type Writer struct {
	sets     store.FlashcardSetStore
	quizzes  store.QuizStore
	usage    store.UsageStore
	publicID func() (string, error)
	logger   *slog.Logger
}

// NewWriter creates a Writer over the given stores.
func NewWriter(
	sets store.FlashcardSetStore,
	quizzes store.QuizStore,
	usage store.UsageStore,
	logger *slog.Logger,
) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		sets:     sets,
		quizzes:  quizzes,
		usage:    usage,
		publicID: func() (string, error) { return gonanoid.New() },
		logger:   logger.With(slog.String("component", "persistence_writer")),
	}
}

// CommitFlashcardSet stores content as a new flashcard set for req.UserID.
func (w *Writer) CommitFlashcardSet(
	ctx context.Context,
	req domain.GenerationRequest,
	content *generation.Content,
) (*domain.FlashcardSet, error) {
	publicID, err := w.publicID()
	if err != nil {
		return nil, fmt.Errorf("%w: public id: %w", generation.ErrPersistenceFailed, err)
	}

	set := domain.NewFlashcardSet(req.UserID, publicID, req.Title, req.Description, req.Difficulty)
	for _, card := range content.Flashcards {
		set.AddFlashcard(card.Question, card.Answer)
	}

	if err := w.sets.Create(ctx, set); err != nil {
		logger.FromContextOrDefault(ctx, w.logger).Error("failed to store flashcard set",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("%w: %w", generation.ErrPersistenceFailed, err)
	}

	if err := w.recordUsage(ctx, req); err != nil {
		return set, err
	}
	return set, nil
}

// CommitQuiz stores content as a new quiz for req.UserID. Answer choices are
// stored in the order they have in content.
func (w *Writer) CommitQuiz(
	ctx context.Context,
	req domain.GenerationRequest,
	content *generation.Content,
) (*domain.Quiz, error) {
	publicID, err := w.publicID()
	if err != nil {
		return nil, fmt.Errorf("%w: public id: %w", generation.ErrPersistenceFailed, err)
	}

	quiz := domain.NewQuiz(req.UserID, publicID, req.Title, req.Description, req.Difficulty)
	for _, q := range content.Questions {
		quiz.AddQuestion(q.Question, q.PossibleAnswers, q.CorrectAnswer)
	}

	if err := w.quizzes.Create(ctx, quiz); err != nil {
		logger.FromContextOrDefault(ctx, w.logger).Error("failed to store quiz",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("%w: %w", generation.ErrPersistenceFailed, err)
	}

	if err := w.recordUsage(ctx, req); err != nil {
		return quiz, err
	}
	return quiz, nil
}

func (w *Writer) recordUsage(ctx context.Context, req domain.GenerationRequest) error {
	record, err := domain.NewUsageRecord(req.UserID, req.Kind)
	if err == nil {
		err = w.usage.Create(ctx, record)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, w.logger).Error("content stored but usage record failed",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", req.UserID.String()),
			slog.String("kind", string(req.Kind)))
		return fmt.Errorf("%w: %w", generation.ErrUsageNotRecorded, err)
	}
	return nil
}
