package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for FlashcardSet
var (
	ErrEmptySetID        = errors.New("flashcard set ID cannot be empty")
	ErrEmptySetUserID    = errors.New("flashcard set user ID cannot be empty")
	ErrEmptySetPublicID  = errors.New("flashcard set public ID cannot be empty")
	ErrEmptySetTitle     = errors.New("flashcard set title cannot be empty")
	ErrEmptyFlashcards   = errors.New("flashcard set must contain at least one flashcard")
	ErrEmptyCardQuestion = errors.New("flashcard question cannot be empty")
	ErrEmptyCardAnswer   = errors.New("flashcard answer cannot be empty")
)

// FlashcardSet is a titled collection of generated flashcards owned by a user.
// It is created atomically together with its flashcards.
type FlashcardSet struct {
	ID          uuid.UUID   `json:"id"`
	PublicID    string      `json:"public_id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Difficulty  Difficulty  `json:"difficulty"`
	Flashcards  []Flashcard `json:"flashcards"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Flashcard is a single question/answer pair within a set.
type Flashcard struct {
	ID       uuid.UUID `json:"id"`
	SetID    uuid.UUID `json:"set_id"`
	Position int       `json:"position"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}

// NewFlashcardSet creates an empty set with a fresh ID and creation time.
// Flashcards are added with AddFlashcard before the set is validated.
func NewFlashcardSet(userID uuid.UUID, publicID, title, description string, difficulty Difficulty) *FlashcardSet {
	return &FlashcardSet{
		ID:          uuid.New(),
		PublicID:    publicID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Difficulty:  difficulty,
		CreatedAt:   time.Now().UTC(),
	}
}

// AddFlashcard appends a flashcard, assigning its ID and position.
func (s *FlashcardSet) AddFlashcard(question, answer string) {
	s.Flashcards = append(s.Flashcards, Flashcard{
		ID:       uuid.New(),
		SetID:    s.ID,
		Position: len(s.Flashcards),
		Question: question,
		Answer:   answer,
	})
}

// Validate checks the set and every flashcard in it.
func (s *FlashcardSet) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySetID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptySetUserID
	}
	if s.PublicID == "" {
		return ErrEmptySetPublicID
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptySetTitle
	}
	if len(s.Flashcards) == 0 {
		return ErrEmptyFlashcards
	}
	for _, card := range s.Flashcards {
		if strings.TrimSpace(card.Question) == "" {
			return ErrEmptyCardQuestion
		}
		if strings.TrimSpace(card.Answer) == "" {
			return ErrEmptyCardAnswer
		}
	}
	return nil
}
