package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studygen-api/internal/api/shared"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/phrazzld/studygen-api/internal/redact"
	"github.com/phrazzld/studygen-api/internal/service"
)

// GenerationHandler serves the single-shot flashcard set and quiz endpoints.
type GenerationHandler struct {
	service service.GenerationService
	logger  *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(svc service.GenerationService, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		service: svc,
		logger:  logger.With(slog.String("component", "generation_handler")),
	}
}

// CreateFlashcardSet handles POST /api/flashcard-sets.
func (h *GenerationHandler) CreateFlashcardSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req GenerateRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	set, err := h.service.GenerateFlashcardSet(r.Context(), req.toGenerationRequest(userID, domain.KindFlashcardSet))
	if err != nil && !h.acceptDegraded(r, log, set != nil, err) {
		HandleAPIError(w, r, err, "Failed to generate flashcard set")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, flashcardSetToResponse(set))
}

// ListFlashcardSets handles GET /api/flashcard-sets.
func (h *GenerationHandler) ListFlashcardSets(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sets, err := h.service.ListFlashcardSets(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcard sets")
		return
	}

	items := make([]FlashcardSetResponse, 0, len(sets))
	for _, set := range sets {
		items = append(items, flashcardSetToResponse(set))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, FlashcardSetListResponse{Items: items, Limit: limit, Offset: offset})
}

// CreateQuiz handles POST /api/quizzes.
func (h *GenerationHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req GenerateRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	quiz, err := h.service.GenerateQuiz(r.Context(), req.toGenerationRequest(userID, domain.KindQuiz))
	if err != nil && !h.acceptDegraded(r, log, quiz != nil, err) {
		HandleAPIError(w, r, err, "Failed to generate quiz")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, quizToResponse(quiz))
}

// ListQuizzes handles GET /api/quizzes.
func (h *GenerationHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list quizzes")
		return
	}

	items := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		items = append(items, quizToResponse(quiz))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, QuizListResponse{Items: items, Limit: limit, Offset: offset})
}

// acceptDegraded reports whether a persisted entity should still be returned
// despite err. Content that was stored without its usage record is served,
// and the missing record is logged for reconciliation.
func (h *GenerationHandler) acceptDegraded(r *http.Request, log *slog.Logger, persisted bool, err error) bool {
	if !persisted || !errors.Is(err, generation.ErrUsageNotRecorded) {
		return false
	}
	log.Error("content persisted without usage record",
		slog.String("trace_id", shared.GetTraceID(r.Context())),
		slog.String("error", redact.Error(err)))
	return true
}
