package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies who authored a chat message.
type ChatRole string

// Chat roles
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Validation errors for chat messages
var (
	ErrEmptyMessageTutorID = errors.New("chat message tutor ID cannot be empty")
	ErrEmptyMessageUserID  = errors.New("chat message user ID cannot be empty")
	ErrInvalidChatRole     = errors.New("chat role must be user or assistant")
)

// Tutor is a conversational assistant grounded on a single source text.
// Tutors are created elsewhere; this service only looks them up.
type Tutor struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one turn in a tutor conversation, owned by the tutor and
// user pair.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	TutorID   uuid.UUID `json:"tutor_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValid reports whether r is a known role.
func (r ChatRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// NewChatMessage creates a validated chat message.
func NewChatMessage(tutorID, userID uuid.UUID, role ChatRole, content string) (*ChatMessage, error) {
	msg := &ChatMessage{
		ID:        uuid.New(),
		TutorID:   tutorID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Validate checks if the ChatMessage has valid data.
func (m *ChatMessage) Validate() error {
	if m.ID == uuid.Nil {
		return ErrInvalidID
	}
	if m.TutorID == uuid.Nil {
		return ErrEmptyMessageTutorID
	}
	if m.UserID == uuid.Nil {
		return ErrEmptyMessageUserID
	}
	if !m.Role.IsValid() {
		return ErrInvalidChatRole
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
