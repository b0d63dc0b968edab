package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/redact"
	"github.com/phrazzld/studygen-api/internal/service"
)

// TutorHandler serves the streamed tutor chat endpoint.
type TutorHandler struct {
	service service.TutorService
	logger  *slog.Logger
}

// NewTutorHandler creates a new TutorHandler.
func NewTutorHandler(svc service.TutorService, logger *slog.Logger) *TutorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TutorHandler{
		service: svc,
		logger:  logger.With(slog.String("component", "tutor_handler")),
	}
}

// Chat handles POST /api/tutors/{id}/chat. The reply is streamed as
// text/plain chunks. Failures before the first chunk produce a regular JSON
// error response; later failures end the stream early.
func (h *TutorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, tutorID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ChatRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	last := len(req.Messages) - 1
	if domain.ChatRole(req.Messages[last].Role) != domain.RoleUser {
		HandleAPIError(w, r, fmt.Errorf("%w: last message must come from the user: %w",
			generation.ErrInvalidPayload, domain.ErrInvalidChatRole), "")
		return
	}
	history := make([]service.ChatTurn, 0, last)
	for _, m := range req.Messages[:last] {
		history = append(history, service.ChatTurn{Role: domain.ChatRole(m.Role), Content: m.Content})
	}

	sink := newStreamSink(w)
	err := h.service.Chat(r.Context(), service.ChatRequest{
		UserID:  userID,
		TutorID: tutorID,
		History: history,
		Message: req.Messages[last].Content,
	}, sink)
	if err == nil {
		return
	}

	if !sink.Started() {
		HandleAPIError(w, r, err, "Failed to generate tutor reply")
		return
	}

	attrs := []any{
		slog.String("tutor_id", tutorID.String()),
		slog.Int("chunks_sent", sink.Chunks()),
		slog.String("error", redact.Error(err)),
	}
	if errors.Is(err, context.Canceled) {
		log.Info("chat stream aborted by client", attrs...)
		return
	}
	log.Error("chat stream ended with error", attrs...)
}

// streamSink writes reply chunks to an HTTP response and flushes each one.
// Headers are sent with the first chunk so that errors raised earlier can
// still be reported with a proper status code.
type streamSink struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
	chunks  int
}

func newStreamSink(w http.ResponseWriter) *streamSink {
	return &streamSink{w: w, rc: http.NewResponseController(w)}
}

// WriteChunk implements generation.ChunkSink.
func (s *streamSink) WriteChunk(ctx context.Context, chunk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.started {
		header := s.w.Header()
		header.Set("Content-Type", "text/plain; charset=utf-8")
		header.Set("Cache-Control", "no-cache")
		header.Set("X-Content-Type-Options", "nosniff")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	if _, err := io.WriteString(s.w, chunk); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	s.chunks++
	return nil
}

// Started reports whether the response headers have been written.
func (s *streamSink) Started() bool {
	return s.started
}

// Chunks returns the number of chunks delivered.
func (s *streamSink) Chunks() int {
	return s.chunks
}
