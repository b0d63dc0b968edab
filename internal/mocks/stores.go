package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/store"
)

// MockFlashcardSetStore implements store.FlashcardSetStore for testing
type MockFlashcardSetStore struct {
	CreateFn     func(ctx context.Context, set *domain.FlashcardSet) error
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.FlashcardSet, error)

	mu      sync.Mutex
	Created []*domain.FlashcardSet
}

var _ store.FlashcardSetStore = (*MockFlashcardSetStore)(nil)

// Create implements the FlashcardSetStore interface
func (m *MockFlashcardSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, set); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Created = append(m.Created, set)
	m.mu.Unlock()
	return nil
}

// ListByUser implements the FlashcardSetStore interface
func (m *MockFlashcardSetStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.FlashcardSet, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sets := make([]*domain.FlashcardSet, 0)
	for _, s := range m.Created {
		if s.UserID == userID {
			sets = append(sets, s)
		}
	}
	return sets, nil
}

// MockQuizStore implements store.QuizStore for testing
type MockQuizStore struct {
	CreateFn     func(ctx context.Context, quiz *domain.Quiz) error
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Quiz, error)

	mu      sync.Mutex
	Created []*domain.Quiz
}

var _ store.QuizStore = (*MockQuizStore)(nil)

// Create implements the QuizStore interface
func (m *MockQuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, quiz); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Created = append(m.Created, quiz)
	m.mu.Unlock()
	return nil
}

// ListByUser implements the QuizStore interface
func (m *MockQuizStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Quiz, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	quizzes := make([]*domain.Quiz, 0)
	for _, q := range m.Created {
		if q.UserID == userID {
			quizzes = append(quizzes, q)
		}
	}
	return quizzes, nil
}

// MockUsageStore implements store.UsageStore for testing.
// By default CountSince counts the records written through Create.
type MockUsageStore struct {
	CreateFn     func(ctx context.Context, record *domain.UsageRecord) error
	CountSinceFn func(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)

	mu         sync.Mutex
	Records    []*domain.UsageRecord
	CountCalls int
}

var _ store.UsageStore = (*MockUsageStore)(nil)

// Create implements the UsageStore interface
func (m *MockUsageStore) Create(ctx context.Context, record *domain.UsageRecord) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Records = append(m.Records, record)
	m.mu.Unlock()
	return nil
}

// CountSince implements the UsageStore interface
func (m *MockUsageStore) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	m.CountCalls++
	m.mu.Unlock()

	if m.CountSinceFn != nil {
		return m.CountSinceFn(ctx, userID, since)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.Records {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// MockTutorStore implements store.TutorStore and store.MessageStore for testing
type MockTutorStore struct {
	GetForUserFn    func(ctx context.Context, id, userID uuid.UUID) (*domain.Tutor, error)
	CreateMessageFn func(ctx context.Context, msg *domain.ChatMessage) error

	// Tutors are returned by GetForUser when they match both id and owner.
	Tutors []*domain.Tutor

	mu       sync.Mutex
	Messages []*domain.ChatMessage
}

var (
	_ store.TutorStore   = (*MockTutorStore)(nil)
	_ store.MessageStore = (*MockTutorStore)(nil)
)

// GetForUser implements the TutorStore interface
func (m *MockTutorStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Tutor, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, id, userID)
	}
	for _, t := range m.Tutors {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return nil, store.ErrTutorNotFound
}

// Create implements the MessageStore interface
func (m *MockTutorStore) Create(ctx context.Context, msg *domain.ChatMessage) error {
	if m.CreateMessageFn != nil {
		if err := m.CreateMessageFn(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Messages = append(m.Messages, msg)
	m.mu.Unlock()
	return nil
}

// SavedMessages returns a copy of the messages stored so far.
func (m *MockTutorStore) SavedMessages() []*domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ChatMessage(nil), m.Messages...)
}
