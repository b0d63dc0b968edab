package generation

import (
	"fmt"
	"strings"

	"github.com/phrazzld/studygen-api/internal/domain"
)

const noWrapperInstruction = "Do not include any Markdown formatting or code block indicators in your response."

// BuildPrompt returns the instruction text for a single-shot generation
// request. The text states the model's role, embeds the count, difficulty and
// source verbatim, and spells out the exact JSON schema expected back.
// choiceCount is the number of answer choices each quiz question must have.
func BuildPrompt(req domain.GenerationRequest, choiceCount int) (string, error) {
	if req.Count <= 0 {
		return "", fmt.Errorf("%w: count must be positive", ErrInvalidPayload)
	}
	if strings.TrimSpace(req.Source) == "" {
		return "", fmt.Errorf("%w: source is required", ErrInvalidPayload)
	}

	var b strings.Builder
	switch req.Kind {
	case domain.KindFlashcardSet:
		fmt.Fprintf(&b, "You are a flashcard set generation AI. Create a flashcard set of %d cards of %s difficulty based on this source: \"%s\". ",
			req.Count, req.Difficulty, req.Source)
		b.WriteString("If the source has insufficient data, use your own information to create the flashcards. ")
		b.WriteString(`Format the output as a JSON object with a "flashcards" array containing objects with "question" and "answer" fields. `)
	case domain.KindQuiz:
		if choiceCount < 2 {
			return "", fmt.Errorf("%w: quiz needs at least two choices, got %d", ErrInvalidPayload, choiceCount)
		}
		fmt.Fprintf(&b, "You are a quiz generation AI. Create a quiz of %d questions of %s difficulty based on this source: \"%s\". ",
			req.Count, req.Difficulty, req.Source)
		fmt.Fprintf(&b, "There should be %d possible answer choices for each question. ", choiceCount)
		b.WriteString("Make sure the correct answer isn't in the same position for each question. ")
		b.WriteString("If the source has insufficient data, use your own information to create the quiz. ")
		fmt.Fprintf(&b, `Format the output as a JSON object with a "questions" array containing objects with "question", "possibleAnswers" (an array of %d strings), and "correctAnswer" (a string matching one of the possibleAnswers) fields. `,
			choiceCount)
	default:
		return "", fmt.Errorf("%w: no prompt for content kind %q", ErrInvalidPayload, req.Kind)
	}
	b.WriteString(noWrapperInstruction)

	return b.String(), nil
}

// TutorPrimer returns the two turns that open every tutor conversation: an
// instruction restricting answers to source, and the model's acknowledgement.
func TutorPrimer(source string) []Turn {
	return []Turn{
		{
			Role: RoleUser,
			Text: fmt.Sprintf("You are a tutoring AI based on this data source: %s. "+
				"Respond to the user's questions appropriately based on the data source. "+
				"Refuse to answer any questions unrelated to the data source.", source),
		},
		{
			Role: RoleModel,
			Text: "Understood. I am a tutoring AI based on the specified data source. " +
				"I will respond to questions related to that source and refuse to answer unrelated questions. " +
				"How may I assist you today?",
		},
	}
}
