package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ContentKind identifies what a generation request produces.
type ContentKind string

// Supported content kinds
const (
	KindFlashcardSet ContentKind = "flashcard_set"
	KindQuiz         ContentKind = "quiz"
	KindChat         ContentKind = "chat"
)

// Difficulty is the requested difficulty of generated material.
type Difficulty string

// Supported difficulties
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Request validation errors. Each wraps ErrValidation.
var (
	ErrInvalidKind        = fmt.Errorf("%w: unknown content kind", ErrValidation)
	ErrEmptySource        = fmt.Errorf("%w: source cannot be empty", ErrValidation)
	ErrInvalidCount       = fmt.Errorf("%w: count out of range", ErrValidation)
	ErrEmptyTitle         = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrEmptyDescription   = fmt.Errorf("%w: description cannot be empty", ErrValidation)
	ErrInvalidDifficulty  = fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrValidation)
	ErrEmptyRequestUserID = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
)

// IsValid reports whether k is a known content kind.
func (k ContentKind) IsValid() bool {
	switch k {
	case KindFlashcardSet, KindQuiz, KindChat:
		return true
	default:
		return false
	}
}

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// GenerationRequest is a user-issued request to produce study material from a
// source text. It is transient and never persisted as such.
type GenerationRequest struct {
	UserID      uuid.UUID
	Kind        ContentKind
	Source      string
	Count       int
	Title       string
	Description string
	Difficulty  Difficulty
}

// Validate checks the request against the configured maximum count.
// Single-shot kinds require every field; a chat request only needs a
// non-empty Source (the new user message). Count is never clamped.
func (r GenerationRequest) Validate(maxCount int) error {
	if r.UserID == uuid.Nil {
		return ErrEmptyRequestUserID
	}
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(r.Source) == "" {
		return ErrEmptySource
	}
	if r.Kind == KindChat {
		return nil
	}

	if r.Count <= 0 || r.Count > maxCount {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidCount, r.Count, maxCount)
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if !r.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}
