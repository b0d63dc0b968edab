package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/quota"
	"github.com/phrazzld/studygen-api/internal/redact"
	"github.com/phrazzld/studygen-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChatTurn is one prior message supplied by the client.
type ChatTurn struct {
	Role    domain.ChatRole
	Content string
}

// ChatRequest asks a tutor to answer Message in the context of History.
type ChatRequest struct {
	UserID  uuid.UUID
	TutorID uuid.UUID
	History []ChatTurn
	Message string
}

// TutorService streams tutor replies.
type TutorService interface {
	// Chat stores the user's message, streams the tutor's reply to sink and
	// stores the reply once the stream ends gracefully. Errors returned before
	// the first chunk is written can still be reported to the client as a
	// normal error response.
	Chat(ctx context.Context, req ChatRequest, sink generation.ChunkSink) error
}

type tutorServiceImpl struct {
	gate     quota.Gate
	model    generation.ModelClient
	tutors   store.TutorStore
	messages store.MessageStore
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Ensure tutorServiceImpl implements TutorService
var _ TutorService = (*tutorServiceImpl)(nil)

// NewTutorService creates a TutorService.
func NewTutorService(
	gate quota.Gate,
	model generation.ModelClient,
	tutors store.TutorStore,
	messages store.MessageStore,
	logger *slog.Logger,
) (TutorService, error) {
	if gate == nil || model == nil || tutors == nil || messages == nil {
		return nil, fmt.Errorf("tutor service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tutorServiceImpl{
		gate:     gate,
		model:    model,
		tutors:   tutors,
		messages: messages,
		tracer:   otel.Tracer(tracerName),
		logger:   logger.With(slog.String("component", "tutor_service")),
	}, nil
}

// Chat implements TutorService.
func (s *tutorServiceImpl) Chat(ctx context.Context, req ChatRequest, sink generation.ChunkSink) (err error) {
	ctx, span := s.tracer.Start(ctx, "tutor_chat", trace.WithAttributes(
		attribute.String("tutor.id", req.TutorID.String()),
		attribute.Int("chat.history_turns", len(req.History)),
	))
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", req.UserID.String()),
		slog.String("tutor_id", req.TutorID.String()))

	if req.UserID == uuid.Nil {
		return generation.ErrUnauthorized
	}

	exceeded, err := s.gate.Exceeded(ctx, req.UserID)
	if err != nil {
		log.Error("quota check failed", slog.String("error", redact.Error(err)))
		return NewServiceError("quota_check", "could not determine usage", err)
	}
	if exceeded {
		return generation.ErrQuotaExceeded
	}

	history, err := priorTurns(req)
	if err != nil {
		return err
	}

	tutor, err := s.tutors.GetForUser(ctx, req.TutorID, req.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrTutorNotFound
		}
		return NewServiceError("tutor_chat", "failed to load tutor", err)
	}

	userMsg, err := domain.NewChatMessage(tutor.ID, req.UserID, domain.RoleUser, req.Message)
	if err != nil {
		return fmt.Errorf("%w: %w", generation.ErrInvalidPayload, err)
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		log.Error("failed to store user message", slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %w", generation.ErrPersistenceFailed, err)
	}

	commit := func(ctx context.Context, reply string) error {
		msg, err := domain.NewChatMessage(tutor.ID, req.UserID, domain.RoleAssistant, reply)
		if err != nil {
			return err
		}
		return s.messages.Create(ctx, msg)
	}

	relay := generation.NewRelay(sink, commit, log)
	turns := append(generation.TutorPrimer(tutor.Source), history...)
	if err := relay.Run(ctx, s.model.GenerateStream(ctx, turns, req.Message)); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("chat.reply_length", len(relay.Reply())))
	log.Info("tutor reply stored", slog.Int("reply_length", len(relay.Reply())))
	return nil
}

// priorTurns validates the client history and maps it to model roles.
func priorTurns(req ChatRequest) ([]generation.Turn, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidPayload, domain.ErrEmptyContent)
	}

	turns := make([]generation.Turn, 0, len(req.History))
	for i, turn := range req.History {
		var role generation.Role
		switch turn.Role {
		case domain.RoleUser:
			role = generation.RoleUser
		case domain.RoleAssistant:
			role = generation.RoleModel
		default:
			return nil, fmt.Errorf("%w: message %d: %w", generation.ErrInvalidPayload, i, domain.ErrInvalidChatRole)
		}
		turns = append(turns, generation.Turn{Role: role, Text: turn.Content})
	}
	return turns, nil
}
