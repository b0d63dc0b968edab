package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Quiz
var (
	ErrEmptyQuizID           = errors.New("quiz ID cannot be empty")
	ErrEmptyQuizUserID       = errors.New("quiz user ID cannot be empty")
	ErrEmptyQuizPublicID     = errors.New("quiz public ID cannot be empty")
	ErrEmptyQuizTitle        = errors.New("quiz title cannot be empty")
	ErrEmptyQuizQuestions    = errors.New("quiz must contain at least one question")
	ErrEmptyQuestionText     = errors.New("quiz question text cannot be empty")
	ErrTooFewAnswers         = errors.New("quiz question needs at least two possible answers")
	ErrCorrectAnswerNotFound = errors.New("correct answer is not among the possible answers")
)

// Quiz is a titled multiple-choice quiz owned by a user.
// It is created atomically together with its questions.
type Quiz struct {
	ID          uuid.UUID      `json:"id"`
	PublicID    string         `json:"public_id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Difficulty  Difficulty     `json:"difficulty"`
	Questions   []QuizQuestion `json:"questions"`
	CreatedAt   time.Time      `json:"created_at"`
}

// QuizQuestion holds one question with its answer choices.
// CorrectAnswer is stored by value and stays the ground truth for grading
// regardless of the order of PossibleAnswers.
type QuizQuestion struct {
	ID              uuid.UUID `json:"id"`
	QuizID          uuid.UUID `json:"quiz_id"`
	Position        int       `json:"position"`
	Question        string    `json:"question"`
	PossibleAnswers []string  `json:"possible_answers"`
	CorrectAnswer   string    `json:"correct_answer"`
}

// NewQuiz creates an empty quiz with a fresh ID and creation time.
func NewQuiz(userID uuid.UUID, publicID, title, description string, difficulty Difficulty) *Quiz {
	return &Quiz{
		ID:          uuid.New(),
		PublicID:    publicID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Difficulty:  difficulty,
		CreatedAt:   time.Now().UTC(),
	}
}

// AddQuestion appends a question, assigning its ID and position.
// The answers slice is copied.
func (q *Quiz) AddQuestion(question string, possibleAnswers []string, correctAnswer string) {
	q.Questions = append(q.Questions, QuizQuestion{
		ID:              uuid.New(),
		QuizID:          q.ID,
		Position:        len(q.Questions),
		Question:        question,
		PossibleAnswers: slices.Clone(possibleAnswers),
		CorrectAnswer:   correctAnswer,
	})
}

// Validate checks the quiz and every question in it.
func (q *Quiz) Validate() error {
	if q.ID == uuid.Nil {
		return ErrEmptyQuizID
	}
	if q.UserID == uuid.Nil {
		return ErrEmptyQuizUserID
	}
	if q.PublicID == "" {
		return ErrEmptyQuizPublicID
	}
	if strings.TrimSpace(q.Title) == "" {
		return ErrEmptyQuizTitle
	}
	if len(q.Questions) == 0 {
		return ErrEmptyQuizQuestions
	}
	for _, question := range q.Questions {
		if strings.TrimSpace(question.Question) == "" {
			return ErrEmptyQuestionText
		}
		if len(question.PossibleAnswers) < 2 {
			return ErrTooFewAnswers
		}
		if !slices.Contains(question.PossibleAnswers, question.CorrectAnswer) {
			return ErrCorrectAnswerNotFound
		}
	}
	return nil
}
