package generation

import (
	"errors"
	"testing"

	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, text string) ContentEnvelope {
	t.Helper()
	env, err := Normalize(text)
	require.NoError(t, err)
	return env
}

func TestValidateFlashcards(t *testing.T) {
	t.Parallel()

	env := mustNormalize(t, `{"flashcards":[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2","extra":true}]}`)

	content, err := Validate(env, domain.KindFlashcardSet, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.KindFlashcardSet, content.Kind)
	assert.Equal(t, []FlashcardDraft{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}, content.Flashcards)
	assert.Empty(t, content.Questions)
}

func TestValidateQuiz(t *testing.T) {
	t.Parallel()

	env := mustNormalize(t, `{"questions":[{"question":"Capital of France?","possibleAnswers":["Paris","Rome","Oslo","Bern","Nice"],"correctAnswer":"Paris"}]}`)

	content, err := Validate(env, domain.KindQuiz, 5)
	require.NoError(t, err)
	require.Len(t, content.Questions, 1)
	assert.Equal(t, "Paris", content.Questions[0].CorrectAnswer)
	assert.Equal(t, []string{"Paris", "Rome", "Oslo", "Bern", "Nice"}, content.Questions[0].PossibleAnswers)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kind      domain.ContentKind
		input     string
		wantIndex int
		wantField string
	}{
		{
			name:      "missing flashcards key",
			kind:      domain.KindFlashcardSet,
			input:     `{"cards":[]}`,
			wantIndex: -1,
			wantField: "flashcards",
		},
		{
			name:      "flashcards not an array",
			kind:      domain.KindFlashcardSet,
			input:     `{"flashcards":{"question":"Q","answer":"A"}}`,
			wantIndex: -1,
			wantField: "flashcards",
		},
		{
			name:      "empty flashcards",
			kind:      domain.KindFlashcardSet,
			input:     `{"flashcards":[]}`,
			wantIndex: -1,
			wantField: "flashcards",
		},
		{
			name:      "flashcard element not an object",
			kind:      domain.KindFlashcardSet,
			input:     `{"flashcards":[{"question":"Q","answer":"A"},"oops"]}`,
			wantIndex: 1,
			wantField: "item",
		},
		{
			name:      "missing answer on second card",
			kind:      domain.KindFlashcardSet,
			input:     `{"flashcards":[{"question":"Q","answer":"A"},{"question":"Q2"}]}`,
			wantIndex: 1,
			wantField: "answer",
		},
		{
			name:      "blank question",
			kind:      domain.KindFlashcardSet,
			input:     `{"flashcards":[{"question":"  ","answer":"A"}]}`,
			wantIndex: 0,
			wantField: "question",
		},
		{
			name:      "numeric answer",
			kind:      domain.KindFlashcardSet,
			input:     `{"flashcards":[{"question":"2+2","answer":4}]}`,
			wantIndex: 0,
			wantField: "answer",
		},
		{
			name:      "quiz with fewer choices than configured",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":["a","b","c","d"],"correctAnswer":"a"}]}`,
			wantIndex: 0,
			wantField: "possibleAnswers",
		},
		{
			name:      "quiz with more choices than configured",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":["a","b","c","d","e","f"],"correctAnswer":"a"}]}`,
			wantIndex: 0,
			wantField: "possibleAnswers",
		},
		{
			name:      "correct answer differs in case",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":["Paris","Rome","Oslo","Bern","Nice"],"correctAnswer":"paris"}]}`,
			wantIndex: 0,
			wantField: "correctAnswer",
		},
		{
			name:      "correct answer has trailing space",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":["Paris","Rome","Oslo","Bern","Nice"],"correctAnswer":"Paris "}]}`,
			wantIndex: 0,
			wantField: "correctAnswer",
		},
		{
			name:      "empty choice",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":["a","","c","d","e"],"correctAnswer":"a"}]}`,
			wantIndex: 0,
			wantField: "possibleAnswers",
		},
		{
			name:      "choices not strings",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":[1,2,3,4,5],"correctAnswer":"1"}]}`,
			wantIndex: 0,
			wantField: "possibleAnswers",
		},
		{
			name:      "missing correct answer",
			kind:      domain.KindQuiz,
			input:     `{"questions":[{"question":"Q","possibleAnswers":["a","b","c","d","e"]}]}`,
			wantIndex: 0,
			wantField: "correctAnswer",
		},
		{
			name:      "flashcard payload for quiz request",
			kind:      domain.KindQuiz,
			input:     `{"flashcards":[{"question":"Q","answer":"A"}]}`,
			wantIndex: -1,
			wantField: "questions",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			content, err := Validate(mustNormalize(t, tc.input), tc.kind, 5)
			require.Error(t, err)
			assert.Nil(t, content)
			assert.True(t, errors.Is(err, ErrValidationFailed))

			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tc.wantIndex, valErr.Index)
			assert.Equal(t, tc.wantField, valErr.Field)
		})
	}
}

func TestValidateChatKindHasNoStructuredOutput(t *testing.T) {
	t.Parallel()

	_, err := Validate(ContentEnvelope{}, domain.KindChat, 5)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
	assert.False(t, errors.Is(err, ErrValidationFailed))
}
