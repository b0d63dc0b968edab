package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/config"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/quota"
	"github.com/phrazzld/studygen-api/internal/redact"
	"github.com/phrazzld/studygen-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans created by this package.
const tracerName = "github.com/phrazzld/studygen-api/internal/service"

// rawSnippetLimit bounds how much rejected model output is logged.
const rawSnippetLimit = 300

// GenerationService produces and lists single-shot study material.
type GenerationService interface {
	// GenerateFlashcardSet runs the pipeline for a flashcard set request.
	// A non-nil set may be returned together with an error matching
	// generation.ErrUsageNotRecorded.
	GenerateFlashcardSet(ctx context.Context, req domain.GenerationRequest) (*domain.FlashcardSet, error)

	// GenerateQuiz runs the pipeline for a quiz request. Answer choices of
	// every question are shuffled before storage.
	GenerateQuiz(ctx context.Context, req domain.GenerationRequest) (*domain.Quiz, error)

	// ListFlashcardSets returns the user's sets, newest first.
	ListFlashcardSets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.FlashcardSet, error)

	// ListQuizzes returns the user's quizzes, newest first.
	ListQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Quiz, error)
}

type generationServiceImpl struct {
	gate     quota.Gate
	model    generation.ModelClient
	writer   *Writer
	sets     store.FlashcardSetStore
	quizzes  store.QuizStore
	shuffler *generation.Shuffler
	limits   config.GenerationConfig
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Ensure generationServiceImpl implements GenerationService
var _ GenerationService = (*generationServiceImpl)(nil)

// NewGenerationService wires the single-shot pipeline. A nil shuffler is
// replaced by a randomly seeded one.
func NewGenerationService(
	gate quota.Gate,
	model generation.ModelClient,
	writer *Writer,
	sets store.FlashcardSetStore,
	quizzes store.QuizStore,
	shuffler *generation.Shuffler,
	limits config.GenerationConfig,
	logger *slog.Logger,
) (GenerationService, error) {
	if gate == nil || model == nil || writer == nil || sets == nil || quizzes == nil {
		return nil, fmt.Errorf("generation service dependencies cannot be nil")
	}
	if limits.MaxCount <= 0 || limits.QuizChoiceCount < 2 {
		return nil, fmt.Errorf("%w: max count %d, quiz choice count %d",
			generation.ErrInvalidConfig, limits.MaxCount, limits.QuizChoiceCount)
	}
	if shuffler == nil {
		shuffler = generation.NewShuffler(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		gate:     gate,
		model:    model,
		writer:   writer,
		sets:     sets,
		quizzes:  quizzes,
		shuffler: shuffler,
		limits:   limits,
		tracer:   otel.Tracer(tracerName),
		logger:   logger.With(slog.String("component", "generation_service")),
	}, nil
}

// GenerateFlashcardSet implements GenerationService.
func (s *generationServiceImpl) GenerateFlashcardSet(
	ctx context.Context,
	req domain.GenerationRequest,
) (set *domain.FlashcardSet, err error) {
	req.Kind = domain.KindFlashcardSet
	ctx, span := s.startSpan(ctx, "generate_flashcard_set", req)
	defer func() { endSpan(span, err) }()

	content, err := s.produce(ctx, req)
	if err != nil {
		return nil, err
	}

	set, err = s.writer.CommitFlashcardSet(ctx, req, content)
	if set != nil {
		span.SetAttributes(attribute.Int("generation.items", len(set.Flashcards)))
	}
	return set, err
}

// GenerateQuiz implements GenerationService.
func (s *generationServiceImpl) GenerateQuiz(
	ctx context.Context,
	req domain.GenerationRequest,
) (quiz *domain.Quiz, err error) {
	req.Kind = domain.KindQuiz
	ctx, span := s.startSpan(ctx, "generate_quiz", req)
	defer func() { endSpan(span, err) }()

	content, err := s.produce(ctx, req)
	if err != nil {
		return nil, err
	}

	s.shuffler.ShuffleChoices(content.Questions)

	quiz, err = s.writer.CommitQuiz(ctx, req, content)
	if quiz != nil {
		span.SetAttributes(attribute.Int("generation.items", len(quiz.Questions)))
	}
	return quiz, err
}

// produce runs admission, prompting, the model call, normalization and
// validation. Each stage short-circuits on failure; the model is never called
// for a request that is over quota or invalid.
func (s *generationServiceImpl) produce(
	ctx context.Context,
	req domain.GenerationRequest,
) (*generation.Content, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", req.UserID.String()),
		slog.String("kind", string(req.Kind)))

	if req.UserID == uuid.Nil {
		return nil, generation.ErrUnauthorized
	}

	exceeded, err := s.gate.Exceeded(ctx, req.UserID)
	if err != nil {
		log.Error("quota check failed", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("quota_check", "could not determine usage", err)
	}
	if exceeded {
		return nil, generation.ErrQuotaExceeded
	}

	if err := req.Validate(s.limits.MaxCount); err != nil {
		log.Debug("rejected generation request", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidPayload, err)
	}

	prompt, err := generation.BuildPrompt(req, s.limits.QuizChoiceCount)
	if err != nil {
		return nil, err
	}

	text, err := s.callModel(ctx, prompt)
	if err != nil {
		log.Warn("model call failed", slog.String("error", redact.Error(err)))
		return nil, err
	}

	env, err := generation.Normalize(text)
	if err != nil {
		var normErr *generation.NormalizationError
		if errors.As(err, &normErr) {
			log.Warn("model output could not be normalized",
				slog.String("reason", string(normErr.Reason)),
				slog.String("candidate", redact.Snippet(normErr.Text, rawSnippetLimit)))
		}
		return nil, err
	}

	content, err := generation.Validate(env, req.Kind, s.limits.QuizChoiceCount)
	if err != nil {
		log.Warn("model output failed validation", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("generated content validated",
		slog.Int("requested", req.Count),
		slog.Int("flashcards", len(content.Flashcards)),
		slog.Int("questions", len(content.Questions)))
	return content, nil
}

func (s *generationServiceImpl) callModel(ctx context.Context, prompt string) (text string, err error) {
	ctx, span := s.tracer.Start(ctx, "model.generate")
	defer func() { endSpan(span, err) }()

	text, err = s.model.Generate(ctx, prompt)
	if err != nil && !errors.Is(err, generation.ErrModelInvocation) {
		err = fmt.Errorf("%w: %w", generation.ErrModelInvocation, err)
	}
	span.SetAttributes(attribute.Int("model.response_length", len(text)))
	return text, err
}

// ListFlashcardSets implements GenerationService.
func (s *generationServiceImpl) ListFlashcardSets(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.FlashcardSet, error) {
	if userID == uuid.Nil {
		return nil, generation.ErrUnauthorized
	}
	sets, err := s.sets.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_flashcard_sets", "failed to load sets", err)
	}
	return sets, nil
}

// ListQuizzes implements GenerationService.
func (s *generationServiceImpl) ListQuizzes(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Quiz, error) {
	if userID == uuid.Nil {
		return nil, generation.ErrUnauthorized
	}
	quizzes, err := s.quizzes.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_quizzes", "failed to load quizzes", err)
	}
	return quizzes, nil
}

func (s *generationServiceImpl) startSpan(
	ctx context.Context,
	name string,
	req domain.GenerationRequest,
) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("generation.kind", string(req.Kind)),
		attribute.Int("generation.count", req.Count),
		attribute.String("generation.difficulty", string(req.Difficulty)),
	))
}

// endSpan records err on span unless it is the degraded usage outcome,
// which still produced content.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, generation.ErrUsageNotRecorded) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
