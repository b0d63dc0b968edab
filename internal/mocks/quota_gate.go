package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/quota"
)

// MockQuotaGate implements quota.Gate for testing
type MockQuotaGate struct {
	ExceededFn func(ctx context.Context, userID uuid.UUID) (bool, error)

	// Default values used when ExceededFn isn't set
	IsExceeded bool
	Err        error

	mu    sync.Mutex
	Calls int
}

var _ quota.Gate = (*MockQuotaGate)(nil)

// Exceeded implements the quota.Gate interface
func (m *MockQuotaGate) Exceeded(ctx context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.ExceededFn != nil {
		return m.ExceededFn(ctx, userID)
	}
	return m.IsExceeded, m.Err
}
