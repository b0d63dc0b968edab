// Package quota decides whether a user may start another generation.
//
// The allowance is a count of usage records in a trailing window. A user is
// over quota once that count reaches the configured limit.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
)

// Gate is consulted before any generation work begins.
type Gate interface {
	// Exceeded reports whether userID has used up their allowance.
	Exceeded(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Counter counts a user's usage records created at or after since.
// store.UsageStore satisfies it.
type Counter interface {
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

// UsageGate is a Gate over a trailing window of usage records.
type UsageGate struct {
	counter Counter
	limit   int
	window  time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewUsageGate creates a gate allowing limit generations per window.
func NewUsageGate(counter Counter, limit int, window time.Duration, logger *slog.Logger) (*UsageGate, error) {
	if counter == nil {
		return nil, fmt.Errorf("quota counter cannot be nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("quota limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("quota window must be positive, got %s", window)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UsageGate{
		counter: counter,
		limit:   limit,
		window:  window,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "quota_gate")),
	}, nil
}

// Ensure UsageGate implements Gate
var _ Gate = (*UsageGate)(nil)

// Exceeded implements Gate.
func (g *UsageGate) Exceeded(ctx context.Context, userID uuid.UUID) (bool, error) {
	since := g.now().Add(-g.window)

	count, err := g.counter.CountSince(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("failed to count usage: %w", err)
	}

	exceeded := count >= g.limit
	if exceeded {
		logger.FromContextOrDefault(ctx, g.logger).Info("user over quota",
			slog.String("user_id", userID.String()),
			slog.Int("count", count),
			slog.Int("limit", g.limit))
	}
	return exceeded, nil
}
