package generation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/studygen-api/internal/domain"
)

// FlashcardDraft is a validated flashcard not yet bound to a stored set.
type FlashcardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionDraft is a validated quiz question not yet bound to a stored quiz.
type QuestionDraft struct {
	Question        string   `json:"question"`
	PossibleAnswers []string `json:"possibleAnswers"`
	CorrectAnswer   string   `json:"correctAnswer"`
}

// Content is model output that passed validation for its kind. Exactly one of
// Flashcards or Questions is populated.
type Content struct {
	Kind       domain.ContentKind
	Flashcards []FlashcardDraft
	Questions  []QuestionDraft
}

// Validate checks env against the shape required for kind and returns the
// decoded content. The first invalid element rejects the whole batch with a
// *ValidationError; partial content is never returned.
func Validate(env ContentEnvelope, kind domain.ContentKind, choiceCount int) (*Content, error) {
	switch kind {
	case domain.KindFlashcardSet:
		items, err := envelopeArray(env, "flashcards")
		if err != nil {
			return nil, err
		}
		cards := make([]FlashcardDraft, 0, len(items))
		for i, item := range items {
			card, err := validateFlashcard(i, item)
			if err != nil {
				return nil, err
			}
			cards = append(cards, card)
		}
		return &Content{Kind: kind, Flashcards: cards}, nil

	case domain.KindQuiz:
		items, err := envelopeArray(env, "questions")
		if err != nil {
			return nil, err
		}
		questions := make([]QuestionDraft, 0, len(items))
		for i, item := range items {
			question, err := validateQuestion(i, item, choiceCount)
			if err != nil {
				return nil, err
			}
			questions = append(questions, question)
		}
		return &Content{Kind: kind, Questions: questions}, nil

	default:
		return nil, fmt.Errorf("%w: content kind %q has no structured output", ErrInvalidPayload, kind)
	}
}

func envelopeArray(env ContentEnvelope, key string) ([]json.RawMessage, error) {
	raw, ok := env[key]
	if !ok {
		return nil, &ValidationError{Index: -1, Field: key, Message: "missing"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Index: -1, Field: key, Message: "must be an array"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Index: -1, Field: key, Message: "must not be empty"}
	}
	return items, nil
}

func validateFlashcard(index int, raw json.RawMessage) (FlashcardDraft, error) {
	obj, err := elementObject(index, raw)
	if err != nil {
		return FlashcardDraft{}, err
	}
	question, err := requiredText(index, obj, "question")
	if err != nil {
		return FlashcardDraft{}, err
	}
	answer, err := requiredText(index, obj, "answer")
	if err != nil {
		return FlashcardDraft{}, err
	}
	return FlashcardDraft{Question: question, Answer: answer}, nil
}

func validateQuestion(index int, raw json.RawMessage, choiceCount int) (QuestionDraft, error) {
	obj, err := elementObject(index, raw)
	if err != nil {
		return QuestionDraft{}, err
	}
	question, err := requiredText(index, obj, "question")
	if err != nil {
		return QuestionDraft{}, err
	}

	var choices []string
	if rawChoices, ok := obj["possibleAnswers"]; !ok {
		return QuestionDraft{}, &ValidationError{Index: index, Field: "possibleAnswers", Message: "missing"}
	} else if err := json.Unmarshal(rawChoices, &choices); err != nil {
		return QuestionDraft{}, &ValidationError{Index: index, Field: "possibleAnswers", Message: "must be an array of strings"}
	}
	if len(choices) != choiceCount {
		return QuestionDraft{}, &ValidationError{
			Index:   index,
			Field:   "possibleAnswers",
			Message: fmt.Sprintf("must have exactly %d entries, got %d", choiceCount, len(choices)),
		}
	}
	for _, choice := range choices {
		if strings.TrimSpace(choice) == "" {
			return QuestionDraft{}, &ValidationError{Index: index, Field: "possibleAnswers", Message: "entries must be non-empty"}
		}
	}

	correct, err := requiredText(index, obj, "correctAnswer")
	if err != nil {
		return QuestionDraft{}, err
	}
	// Exact byte comparison; no trimming or case folding.
	if !slices.Contains(choices, correct) {
		return QuestionDraft{}, &ValidationError{Index: index, Field: "correctAnswer", Message: "must be one of possibleAnswers"}
	}

	return QuestionDraft{Question: question, PossibleAnswers: choices, CorrectAnswer: correct}, nil
}

func elementObject(index int, raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, &ValidationError{Index: index, Field: "item", Message: "must be an object"}
	}
	return obj, nil
}

func requiredText(index int, obj map[string]json.RawMessage, field string) (string, error) {
	raw, ok := obj[field]
	if !ok {
		return "", &ValidationError{Index: index, Field: field, Message: "missing"}
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &ValidationError{Index: index, Field: field, Message: "must be a string"}
	}
	if strings.TrimSpace(value) == "" {
		return "", &ValidationError{Index: index, Field: field, Message: "must not be empty"}
	}
	return value, nil
}
