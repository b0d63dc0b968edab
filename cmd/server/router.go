package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studygen-api/internal/api"
	apiMiddleware "github.com/phrazzld/studygen-api/internal/api/middleware"
	"github.com/phrazzld/studygen-api/internal/platform/logger"
	"github.com/rs/cors"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(requestLogger)

	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	tutorHandler := api.NewTutorHandler(app.tutorService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/flashcard-sets", generationHandler.CreateFlashcardSet)
		r.Get("/flashcard-sets", generationHandler.ListFlashcardSets)

		r.Post("/quizzes", generationHandler.CreateQuiz)
		r.Get("/quizzes", generationHandler.ListQuizzes)

		r.Post("/tutors/{id}/chat", tutorHandler.Chat)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return app.corsHandler(r)
}

// corsHandler allows browser clients from the configured origins. With no
// origins configured, cross-origin requests are not granted.
func (app *application) corsHandler(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept", "Origin"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         86400,
	}).Handler(next)
}

// requestLogger logs one line per completed request with the request-scoped
// logger set by TraceMiddleware.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logger.FromContextOrDefault(r.Context(), nil).Info("request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
