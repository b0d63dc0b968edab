package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashcardRequest(userID uuid.UUID) domain.GenerationRequest {
	return domain.GenerationRequest{
		UserID:      userID,
		Kind:        domain.KindFlashcardSet,
		Source:      "Photosynthesis converts light into chemical energy.",
		Count:       3,
		Title:       "Photosynthesis",
		Description: "Basics",
		Difficulty:  domain.DifficultyEasy,
	}
}

func quizRequest(userID uuid.UUID) domain.GenerationRequest {
	req := flashcardRequest(userID)
	req.Kind = domain.KindQuiz
	req.Title = "Capitals"
	return req
}

func TestWriter_CommitFlashcardSet(t *testing.T) {
	userID := uuid.New()
	content := &generation.Content{
		Kind:       domain.KindFlashcardSet,
		Flashcards: []generation.FlashcardDraft{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}},
	}

	t.Run("stores content then usage", func(t *testing.T) {
		sets, usage := &mocks.MockFlashcardSetStore{}, &mocks.MockUsageStore{}
		w := NewWriter(sets, &mocks.MockQuizStore{}, usage, nil)

		set, err := w.CommitFlashcardSet(context.Background(), flashcardRequest(userID), content)
		require.NoError(t, err)
		require.Len(t, sets.Created, 1)
		assert.Same(t, set, sets.Created[0])
		assert.Len(t, set.PublicID, 21)
		assert.Equal(t, "Photosynthesis", set.Title)
		require.Len(t, set.Flashcards, 2)
		assert.Equal(t, 1, set.Flashcards[1].Position)

		require.Len(t, usage.Records, 1)
		assert.Equal(t, userID, usage.Records[0].UserID)
		assert.Equal(t, domain.KindFlashcardSet, usage.Records[0].Kind)
	})

	t.Run("content failure writes no usage", func(t *testing.T) {
		storeErr := errors.New("insert failed")
		sets := &mocks.MockFlashcardSetStore{
			CreateFn: func(context.Context, *domain.FlashcardSet) error { return storeErr },
		}
		usage := &mocks.MockUsageStore{}
		w := NewWriter(sets, &mocks.MockQuizStore{}, usage, nil)

		set, err := w.CommitFlashcardSet(context.Background(), flashcardRequest(userID), content)
		assert.Nil(t, set)
		assert.ErrorIs(t, err, generation.ErrPersistenceFailed)
		assert.ErrorIs(t, err, storeErr)
		assert.Empty(t, usage.Records)
	})

	t.Run("usage failure returns the stored set", func(t *testing.T) {
		sets := &mocks.MockFlashcardSetStore{}
		usage := &mocks.MockUsageStore{
			CreateFn: func(context.Context, *domain.UsageRecord) error { return errors.New("usage insert failed") },
		}
		w := NewWriter(sets, &mocks.MockQuizStore{}, usage, nil)

		set, err := w.CommitFlashcardSet(context.Background(), flashcardRequest(userID), content)
		require.NotNil(t, set)
		assert.ErrorIs(t, err, generation.ErrUsageNotRecorded)
		assert.NotErrorIs(t, err, generation.ErrPersistenceFailed)
		assert.Len(t, sets.Created, 1)
	})

	t.Run("public id failure", func(t *testing.T) {
		sets := &mocks.MockFlashcardSetStore{}
		w := NewWriter(sets, &mocks.MockQuizStore{}, &mocks.MockUsageStore{}, nil)
		w.publicID = func() (string, error) { return "", errors.New("entropy exhausted") }

		_, err := w.CommitFlashcardSet(context.Background(), flashcardRequest(userID), content)
		assert.ErrorIs(t, err, generation.ErrPersistenceFailed)
		assert.Empty(t, sets.Created)
	})
}

func TestWriter_CommitQuiz(t *testing.T) {
	userID := uuid.New()
	quizzes, usage := &mocks.MockQuizStore{}, &mocks.MockUsageStore{}
	w := NewWriter(&mocks.MockFlashcardSetStore{}, quizzes, usage, nil)

	content := &generation.Content{
		Kind: domain.KindQuiz,
		Questions: []generation.QuestionDraft{{
			Question:        "Capital of France?",
			PossibleAnswers: []string{"Nice", "Paris", "Lyon"},
			CorrectAnswer:   "Paris",
		}},
	}

	quiz, err := w.CommitQuiz(context.Background(), quizRequest(userID), content)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, []string{"Nice", "Paris", "Lyon"}, quiz.Questions[0].PossibleAnswers)
	assert.Equal(t, "Paris", quiz.Questions[0].CorrectAnswer)
	require.Len(t, usage.Records, 1)
	assert.Equal(t, domain.KindQuiz, usage.Records[0].Kind)
}
