package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestFlashcardSetValidate(t *testing.T) {
	t.Parallel()

	set := NewFlashcardSet(uuid.New(), "abc123", "Title", "Desc", DifficultyEasy)
	if err := set.Validate(); err != ErrEmptyFlashcards {
		t.Fatalf("Expected %v for empty set, got %v", ErrEmptyFlashcards, err)
	}

	set.AddFlashcard("Q1", "A1")
	set.AddFlashcard("Q2", "A2")
	if err := set.Validate(); err != nil {
		t.Fatalf("Expected valid set, got %v", err)
	}

	for i, card := range set.Flashcards {
		if card.Position != i {
			t.Errorf("Expected position %d, got %d", i, card.Position)
		}
		if card.SetID != set.ID {
			t.Errorf("Expected set ID %s, got %s", set.ID, card.SetID)
		}
		if card.ID == uuid.Nil {
			t.Error("Expected non-nil flashcard ID")
		}
	}

	set.AddFlashcard("Q3", " ")
	if err := set.Validate(); err != ErrEmptyCardAnswer {
		t.Errorf("Expected %v, got %v", ErrEmptyCardAnswer, err)
	}

	noOwner := NewFlashcardSet(uuid.Nil, "abc123", "Title", "Desc", DifficultyEasy)
	noOwner.AddFlashcard("Q", "A")
	if err := noOwner.Validate(); err != ErrEmptySetUserID {
		t.Errorf("Expected %v, got %v", ErrEmptySetUserID, err)
	}
}

func TestQuizValidate(t *testing.T) {
	t.Parallel()

	quiz := NewQuiz(uuid.New(), "xyz789", "Title", "Desc", DifficultyHard)
	if err := quiz.Validate(); err != ErrEmptyQuizQuestions {
		t.Fatalf("Expected %v, got %v", ErrEmptyQuizQuestions, err)
	}

	answers := []string{"a", "b", "c"}
	quiz.AddQuestion("Pick b", answers, "b")
	if err := quiz.Validate(); err != nil {
		t.Fatalf("Expected valid quiz, got %v", err)
	}

	// AddQuestion must copy the slice.
	answers[1] = "changed"
	if quiz.Questions[0].PossibleAnswers[1] != "b" {
		t.Errorf("Expected stored answers to be independent of caller slice")
	}

	quiz.AddQuestion("Pick z", []string{"a", "b"}, "z")
	if err := quiz.Validate(); err != ErrCorrectAnswerNotFound {
		t.Errorf("Expected %v, got %v", ErrCorrectAnswerNotFound, err)
	}
}

func TestNewChatMessage(t *testing.T) {
	t.Parallel()

	tutorID, userID := uuid.New(), uuid.New()

	msg, err := NewChatMessage(tutorID, userID, RoleAssistant, "Hello")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if msg.ID == uuid.Nil || msg.CreatedAt.IsZero() {
		t.Error("Expected generated ID and timestamp")
	}

	if _, err := NewChatMessage(tutorID, userID, "system", "Hello"); err != ErrInvalidChatRole {
		t.Errorf("Expected %v, got %v", ErrInvalidChatRole, err)
	}
	if _, err := NewChatMessage(tutorID, userID, RoleUser, ""); err != ErrEmptyContent {
		t.Errorf("Expected %v, got %v", ErrEmptyContent, err)
	}
	if _, err := NewChatMessage(uuid.Nil, userID, RoleUser, "hi"); err != ErrEmptyMessageTutorID {
		t.Errorf("Expected %v, got %v", ErrEmptyMessageTutorID, err)
	}
}

func TestNewUsageRecord(t *testing.T) {
	t.Parallel()

	record, err := NewUsageRecord(uuid.New(), KindQuiz)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.Kind != KindQuiz {
		t.Errorf("Expected kind %s, got %s", KindQuiz, record.Kind)
	}

	if _, err := NewUsageRecord(uuid.Nil, KindQuiz); err != ErrEmptyUsageUserID {
		t.Errorf("Expected %v, got %v", ErrEmptyUsageUserID, err)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("limit", "must be a positive integer", ErrValidation)
	if err.Error() != "limit must be a positive integer" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("expected ValidationError to match ErrValidation")
	}
	if errors.Is(NewValidationError("id", "has invalid format", ErrInvalidID), ErrValidation) {
		t.Error("ErrInvalidID must not match ErrValidation")
	}
}
