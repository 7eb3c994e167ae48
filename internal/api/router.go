package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"checkcheck-api/internal/api/handlers"
	apimiddleware "checkcheck-api/internal/api/middleware"
	"checkcheck-api/internal/config"
	"checkcheck-api/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitChecker
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. limiter may be nil, in which case
// rate limiting is skipped.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter apimiddleware.RateLimitChecker, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.limiter != nil {
		router.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
	}

	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	router.Route("/api", func(api chi.Router) {
		api.Route("/survey", func(survey chi.Router) {
			survey.Get("/questions", r.handlers.Survey.Questions)
			survey.Post("/score", r.handlers.Survey.Score)
		})

		api.Post("/heuristics/evaluate", r.handlers.Heuristics.Evaluate)

		api.Post("/analyze", r.handlers.Analysis.Analyze)
		api.Post("/analyze/batch", r.handlers.Analysis.AnalyzeBatch)
		api.Post("/analyze-email", r.handlers.Analysis.AnalyzeEmail)

		api.Post("/posture/advise", r.handlers.Posture.Advise)

		// Diagnosis records are owned by the token's user
		api.Route("/diagnosis", func(diag chi.Router) {
			diag.Use(apimiddleware.JWTAuth(r.config.JWT))
			diag.Post("/", r.handlers.Diagnosis.Create)
			diag.Get("/{userId}", r.handlers.Diagnosis.List)
			diag.Delete("/{id}/{userId}", r.handlers.Diagnosis.Delete)
		})
	})

	return router
}
