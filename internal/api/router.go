package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/video-quiz/backend/internal/api/handlers"
	"github.com/video-quiz/backend/internal/api/middleware"
	"github.com/video-quiz/backend/internal/app"
)

// NewRouter builds the HTTP API. a must have its job queue started.
func NewRouter(a *app.App) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(a.Log))
	r.Use(middleware.CORS(a.Config.CORSOrigins))
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBody))

	// Handlers
	jobHandler := handlers.NewJobHandler(a.Queue)
	quizHandler := handlers.NewQuizHandler(a)
	sessionHandler := handlers.NewSessionHandler(a.Sessions)
	enginesHandler := handlers.NewEnginesHandler(a.Translators, a.Generators, handlers.EngineDefaults{
		Translate: a.Config.Translate.Engine,
		Generate:  a.Config.Generate.Engine,
	})
	quizLimiter := middleware.NewRateLimiter(a.Config.RateLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Get("/engines", enginesHandler.ListEngines)

		// Quizzes
		r.With(quizLimiter.Handler).Post("/quizzes", quizHandler.CreateQuiz)

		// Jobs
		r.Get("/jobs", jobHandler.ListJobs)
		r.Get("/jobs/{id}", jobHandler.GetJob)
		r.Delete("/jobs/{id}", jobHandler.CancelJob)
		r.Post("/jobs/{id}/retry", jobHandler.RetryJob)

		// Sessions
		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Delete("/sessions/{id}", sessionHandler.DeleteSession)
		r.Put("/sessions/{id}/answers/{index}", sessionHandler.SelectAnswer)
		r.Post("/sessions/{id}/submit", sessionHandler.Submit)
		r.Get("/sessions/{id}/score", sessionHandler.GetScore)
	})

	return r
}
