package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
)

// GenerateRequest is the body of POST /api/flashcard-sets and POST /api/quizzes.
// The upper bound of Num is configured and enforced by the service.
type GenerateRequest struct {
	Source      string `json:"source"      validate:"required"`
	Num         int    `json:"num"         validate:"required,min=1"`
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Difficulty  string `json:"difficulty"  validate:"required,oneof=easy medium hard"`
}

// ChatMessageRequest is one entry of a chat request.
type ChatMessageRequest struct {
	Role    string `json:"role"    validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is the body of POST /api/tutors/{id}/chat. The last message is
// the new user message; earlier ones are the conversation so far.
type ChatRequest struct {
	Messages []ChatMessageRequest `json:"messages" validate:"required,min=1,dive"`
}

// FlashcardResponse is a single card of a FlashcardSetResponse.
type FlashcardResponse struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}

// FlashcardSetResponse is returned for a created or listed flashcard set.
type FlashcardSetResponse struct {
	ID          uuid.UUID           `json:"id"`
	PublicID    string              `json:"public_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Difficulty  string              `json:"difficulty"`
	Flashcards  []FlashcardResponse `json:"flashcards"`
	CreatedAt   time.Time           `json:"created_at"`
}

// QuizQuestionResponse is a single question of a QuizResponse.
type QuizQuestionResponse struct {
	ID              uuid.UUID `json:"id"`
	Position        int       `json:"position"`
	Question        string    `json:"question"`
	PossibleAnswers []string  `json:"possible_answers"`
	CorrectAnswer   string    `json:"correct_answer"`
}

// QuizResponse is returned for a created or listed quiz.
type QuizResponse struct {
	ID          uuid.UUID              `json:"id"`
	PublicID    string                 `json:"public_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Difficulty  string                 `json:"difficulty"`
	Questions   []QuizQuestionResponse `json:"questions"`
	CreatedAt   time.Time              `json:"created_at"`
}

// FlashcardSetListResponse is the body of GET /api/flashcard-sets.
type FlashcardSetListResponse struct {
	Items  []FlashcardSetResponse `json:"items"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// QuizListResponse is the body of GET /api/quizzes.
type QuizListResponse struct {
	Items  []QuizResponse `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// toGenerationRequest converts the body into a domain request for kind.
func (r GenerateRequest) toGenerationRequest(userID uuid.UUID, kind domain.ContentKind) domain.GenerationRequest {
	return domain.GenerationRequest{
		UserID:      userID,
		Kind:        kind,
		Source:      r.Source,
		Count:       r.Num,
		Title:       r.Title,
		Description: r.Description,
		Difficulty:  domain.Difficulty(r.Difficulty),
	}
}

func flashcardSetToResponse(set *domain.FlashcardSet) FlashcardSetResponse {
	cards := make([]FlashcardResponse, 0, len(set.Flashcards))
	for _, card := range set.Flashcards {
		cards = append(cards, FlashcardResponse{
			ID:       card.ID,
			Position: card.Position,
			Question: card.Question,
			Answer:   card.Answer,
		})
	}
	return FlashcardSetResponse{
		ID:          set.ID,
		PublicID:    set.PublicID,
		Title:       set.Title,
		Description: set.Description,
		Difficulty:  string(set.Difficulty),
		Flashcards:  cards,
		CreatedAt:   set.CreatedAt,
	}
}

func quizToResponse(quiz *domain.Quiz) QuizResponse {
	questions := make([]QuizQuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuizQuestionResponse{
			ID:              q.ID,
			Position:        q.Position,
			Question:        q.Question,
			PossibleAnswers: q.PossibleAnswers,
			CorrectAnswer:   q.CorrectAnswer,
		})
	}
	return QuizResponse{
		ID:          quiz.ID,
		PublicID:    quiz.PublicID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Difficulty:  string(quiz.Difficulty),
		Questions:   questions,
		CreatedAt:   quiz.CreatedAt,
	}
}
