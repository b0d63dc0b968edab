package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studygen-api/internal/api/shared"
	"github.com/phrazzld/studygen-api/internal/domain"
	"github.com/phrazzld/studygen-api/internal/generation"
	"github.com/phrazzld/studygen-api/internal/service"
	"github.com/stretchr/testify/require"
)

// fakeGenerationService implements service.GenerationService with function
// fields and records the requests it receives.
type fakeGenerationService struct {
	GenerateFlashcardSetFn func(ctx context.Context, req domain.GenerationRequest) (*domain.FlashcardSet, error)
	GenerateQuizFn         func(ctx context.Context, req domain.GenerationRequest) (*domain.Quiz, error)
	ListFlashcardSetsFn    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.FlashcardSet, error)
	ListQuizzesFn          func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Quiz, error)

	mu       sync.Mutex
	requests []domain.GenerationRequest
}

var _ service.GenerationService = (*fakeGenerationService)(nil)

func (f *fakeGenerationService) record(req domain.GenerationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
}

func (f *fakeGenerationService) Requests() []domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.GenerationRequest(nil), f.requests...)
}

func (f *fakeGenerationService) GenerateFlashcardSet(
	ctx context.Context,
	req domain.GenerationRequest,
) (*domain.FlashcardSet, error) {
	f.record(req)
	return f.GenerateFlashcardSetFn(ctx, req)
}

func (f *fakeGenerationService) GenerateQuiz(ctx context.Context, req domain.GenerationRequest) (*domain.Quiz, error) {
	f.record(req)
	return f.GenerateQuizFn(ctx, req)
}

func (f *fakeGenerationService) ListFlashcardSets(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.FlashcardSet, error) {
	return f.ListFlashcardSetsFn(ctx, userID, limit, offset)
}

func (f *fakeGenerationService) ListQuizzes(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Quiz, error) {
	return f.ListQuizzesFn(ctx, userID, limit, offset)
}

// fakeTutorService implements service.TutorService by running ChatFn.
type fakeTutorService struct {
	ChatFn func(ctx context.Context, req service.ChatRequest, sink generation.ChunkSink) error

	mu       sync.Mutex
	requests []service.ChatRequest
}

var _ service.TutorService = (*fakeTutorService)(nil)

func (f *fakeTutorService) Chat(ctx context.Context, req service.ChatRequest, sink generation.ChunkSink) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.ChatFn(ctx, req, sink)
}

func (f *fakeTutorService) Requests() []service.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.ChatRequest(nil), f.requests...)
}

// newTestRouter mounts the handlers the way the server does, with the
// authenticated user injected directly instead of through JWT middleware.
func newTestRouter(userID uuid.UUID, gen service.GenerationService, tutor service.TutorService) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})

	if gen != nil {
		h := NewGenerationHandler(gen, nil)
		r.Post("/api/flashcard-sets", h.CreateFlashcardSet)
		r.Get("/api/flashcard-sets", h.ListFlashcardSets)
		r.Post("/api/quizzes", h.CreateQuiz)
		r.Get("/api/quizzes", h.ListQuizzes)
	}
	if tutor != nil {
		h := NewTutorHandler(tutor, nil)
		r.Post("/api/tutors/{id}/chat", h.Chat)
	}
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body
}
