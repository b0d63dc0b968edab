package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
)

// TutorStore looks up tutors. Tutor management lives elsewhere.
type TutorStore interface {
	// GetForUser returns the tutor with id owned by userID.
	// Returns ErrTutorNotFound if it does not exist or belongs to someone else.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Tutor, error)
}

// MessageStore persists tutor conversation turns.
type MessageStore interface {
	// Create saves a single chat message.
	Create(ctx context.Context, msg *domain.ChatMessage) error
}
