package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/keepbooks/bankrec/internal/adapter/http/handler"
	"github.com/keepbooks/bankrec/internal/adapter/http/middleware"
	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/infrastructure/auth"
	"github.com/keepbooks/bankrec/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ImportHandler    *handler.ImportHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	JWTManager       *auth.JWTManager
	Logger           zerolog.Logger
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(anonymousUser)
		}

		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
		}

		r.Get("/audit-logs", cfg.ImportHandler.ListAudit)

		r.Route("/imports", func(r chi.Router) {
			r.Get("/", cfg.ImportHandler.List)
			r.Get("/{id}", cfg.ImportHandler.Get)

			r.Group(func(r chi.Router) {
				if cfg.JWTManager != nil {
					r.Use(middleware.RequireRole(domain.RoleOperator))
				}
				r.Post("/", cfg.ImportHandler.Import)
				r.Delete("/{id}", cfg.ImportHandler.Undo)
			})
		})
	})

	return r
}

// anonymousUser stands in for auth in single-tenant deployments where
// AUTH_ENABLED is off. Every request acts as the same operator.
func anonymousUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := &domain.User{ID: "default", Role: domain.RoleOperator}
		ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
