package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
)

// UsageStore persists append-only usage records.
type UsageStore interface {
	// Create appends a usage record.
	Create(ctx context.Context, record *domain.UsageRecord) error

	// CountSince returns how many records the user has created at or after since.
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}
