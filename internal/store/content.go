package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
)

// FlashcardSetStore defines the interface for flashcard set persistence.
type FlashcardSetStore interface {
	// Create saves the set and all of its flashcards in one transaction.
	// Either everything is stored or nothing is.
	Create(ctx context.Context, set *domain.FlashcardSet) error

	// ListByUser returns the user's sets, newest first, with their flashcards.
	// Returns an empty slice if the user has none.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.FlashcardSet, error)
}

// QuizStore defines the interface for quiz persistence.
type QuizStore interface {
	// Create saves the quiz and all of its questions in one transaction.
	Create(ctx context.Context, quiz *domain.Quiz) error

	// ListByUser returns the user's quizzes, newest first, with their questions.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Quiz, error)
}
