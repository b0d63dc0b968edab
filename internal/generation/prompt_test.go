package generation

import (
	"errors"
	"testing"

	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptRequest(kind domain.ContentKind) domain.GenerationRequest {
	return domain.GenerationRequest{
		Kind:        kind,
		Source:      "The mitochondria is the powerhouse of the cell.\nIt produces ATP.",
		Count:       7,
		Title:       "Cells",
		Description: "Organelles",
		Difficulty:  domain.DifficultyHard,
	}
}

func TestBuildPromptFlashcards(t *testing.T) {
	t.Parallel()

	prompt, err := BuildPrompt(promptRequest(domain.KindFlashcardSet), 5)
	require.NoError(t, err)

	assert.Contains(t, prompt, "flashcard set generation AI")
	assert.Contains(t, prompt, "7 cards")
	assert.Contains(t, prompt, "hard difficulty")
	assert.Contains(t, prompt, "The mitochondria is the powerhouse of the cell.\nIt produces ATP.")
	assert.Contains(t, prompt, `"flashcards" array`)
	assert.Contains(t, prompt, `"question" and "answer"`)
	assert.Contains(t, prompt, "Do not include any Markdown formatting or code block indicators")
	assert.NotContains(t, prompt, "possibleAnswers")
}

func TestBuildPromptQuiz(t *testing.T) {
	t.Parallel()

	prompt, err := BuildPrompt(promptRequest(domain.KindQuiz), 4)
	require.NoError(t, err)

	assert.Contains(t, prompt, "quiz generation AI")
	assert.Contains(t, prompt, "7 questions")
	assert.Contains(t, prompt, "4 possible answer choices")
	assert.Contains(t, prompt, `"possibleAnswers" (an array of 4 strings)`)
	assert.Contains(t, prompt, `"correctAnswer"`)
	assert.Contains(t, prompt, "isn't in the same position")
	assert.Contains(t, prompt, "Do not include any Markdown formatting or code block indicators")
}

func TestBuildPromptRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(r *domain.GenerationRequest)
		choiceCount int
	}{
		{name: "chat kind", mutate: func(r *domain.GenerationRequest) { r.Kind = domain.KindChat }, choiceCount: 5},
		{name: "zero count", mutate: func(r *domain.GenerationRequest) { r.Count = 0 }, choiceCount: 5},
		{name: "blank source", mutate: func(r *domain.GenerationRequest) { r.Source = " " }, choiceCount: 5},
		{
			name:        "single choice quiz",
			mutate:      func(r *domain.GenerationRequest) { r.Kind = domain.KindQuiz },
			choiceCount: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := promptRequest(domain.KindFlashcardSet)
			tc.mutate(&req)

			prompt, err := BuildPrompt(req, tc.choiceCount)
			assert.Empty(t, prompt)
			assert.True(t, errors.Is(err, ErrInvalidPayload), "got %v", err)
		})
	}
}

func TestTutorPrimer(t *testing.T) {
	t.Parallel()

	turns := TutorPrimer("World War II history")
	require.Len(t, turns, 2)

	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Contains(t, turns[0].Text, "World War II history")
	assert.Contains(t, turns[0].Text, "Refuse to answer any questions unrelated")

	assert.Equal(t, RoleModel, turns[1].Role)
	assert.Contains(t, turns[1].Text, "Understood.")
}
