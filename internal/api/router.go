package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"phonetracer/internal/api/handlers"
	apimiddleware "phonetracer/internal/api/middleware"
	"phonetracer/internal/config"
	"phonetracer/internal/infrastructure/cache"
	"phonetracer/internal/metrics"
	"phonetracer/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  cache.RateLimiter
	events   http.Handler
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. events serves the live event
// WebSocket and may be nil.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter cache.RateLimiter, events http.Handler, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		events:   events,
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

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Probes and metrics
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)
	router.Handle("/metrics", metrics.Handler())

	if r.events != nil {
		router.Get("/ws/events", r.events.ServeHTTP)
	}

	router.Route("/api", func(api chi.Router) {
		timeout := r.config.Server.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		api.Use(middleware.Timeout(timeout))

		if r.config.RateLimit.Enabled && r.limiter != nil {
			api.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
		}

		api.Get("/health", r.handlers.Health.Simple)

		// Number lookups and community reports
		api.Get("/trace", r.handlers.Phone.Trace)
		api.Post("/report", r.handlers.Phone.Report)
		api.Get("/recent", r.handlers.Phone.Recent)

		// Risk analysis and safety chat
		api.Route("/ai", func(aiRouter chi.Router) {
			aiRouter.Post("/analyze", r.handlers.AI.Analyze)
			aiRouter.Post("/chat", r.handlers.AI.Chat)
			aiRouter.Get("/status", r.handlers.AI.Status)
		})
	})

	return router
}
