package gemini

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/phrazzld/studygen-api/internal/config"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/redact"
	"google.golang.org/genai"
)

// rawSnippetLimit bounds how much model output is written to debug logs.
const rawSnippetLimit = 500

// modelsAPI is the subset of *genai.Models used by Client.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
	GenerateContentStream(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client talks to Gemini on behalf of the generation pipeline.
type Client struct {
	models          modelsAPI
	model           string
	chatModel       string
	maxOutputTokens int32
	logger          *slog.Logger
}

// Ensure Client implements generation.ModelClient
var _ generation.ModelClient = (*Client)(nil)

// NewClient creates a Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(client.Models, cfg, logger), nil
}

func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxOutputTokens < 0 {
		return fmt.Errorf("%w: max output tokens cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}

func newClient(models modelsAPI, cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	chatModel := cfg.ChatModelName
	if chatModel == "" {
		chatModel = cfg.ModelName
	}

	return &Client{
		models:          models,
		model:           cfg.ModelName,
		chatModel:       chatModel,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		logger:          logger.With(slog.String("component", "gemini_client")),
	}
}

// Generate implements generation.ModelClient.Generate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	log.Debug("calling Gemini",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{userContent(prompt)}, nil)
	if err != nil {
		log.Error("Gemini call failed",
			slog.String("model", c.model),
			slog.String("error", redact.Error(err)))
		return "", fmt.Errorf("%w: %w", generation.ErrModelInvocation, err)
	}

	text, err := responseText(resp)
	if err != nil {
		log.Warn("Gemini returned no usable text",
			slog.String("model", c.model),
			slog.String("error", err.Error()))
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty response", generation.ErrModelInvocation)
	}

	log.Debug("Gemini raw response",
		slog.Int("length", len(text)),
		slog.String("text", redact.Snippet(text, rawSnippetLimit)))
	return text, nil
}

// GenerateStream implements generation.ModelClient.GenerateStream.
// Empty fragments are skipped.
func (c *Client) GenerateStream(ctx context.Context, history []generation.Turn, message string) iter.Seq2[string, error] {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, &genai.Content{
			Role:  string(turn.Role),
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	contents = append(contents, userContent(message))

	var cfg *genai.GenerateContentConfig
	if c.maxOutputTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: c.maxOutputTokens}
	}

	return func(yield func(string, error) bool) {
		log := logger.FromContextOrDefault(ctx, c.logger)
		log.Debug("opening Gemini stream",
			slog.String("model", c.chatModel),
			slog.Int("history_turns", len(history)))

		for resp, err := range c.models.GenerateContentStream(ctx, c.chatModel, contents, cfg) {
			if err != nil {
				yield("", fmt.Errorf("%w: %w", generation.ErrModelInvocation, err))
				return
			}

			text, err := responseText(resp)
			if err != nil {
				yield("", err)
				return
			}
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func userContent(text string) *genai.Content {
	return &genai.Content{
		Role:  string(genai.RoleUser),
		Parts: []*genai.Part{{Text: text}},
	}
}

// responseText joins the text parts of the first candidate. A response that
// carries no candidate is only an error when the prompt itself was blocked;
// stream chunks without candidates yield "".
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrModelInvocation)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", nil
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", nil
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text, nil
}
