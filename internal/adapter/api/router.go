package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/user/erp-api/internal/adapter/api/handler"
	"github.com/user/erp-api/internal/adapter/api/middleware"
	"github.com/user/erp-api/internal/adapter/metrics"
	"github.com/user/erp-api/internal/domain"
	"github.com/user/erp-api/internal/pkg/config"
	"github.com/user/erp-api/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the category service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.CategoryMetrics,
	categoryUseCase usecase.CategoryUseCase,
	globalAdmin usecase.GlobalCategoryAdmin,
	authUseCase usecase.AuthUseCase,
) http.Handler {
	categoryHandler := handler.NewCategoryHandler(categoryUseCase, logger)
	adminHandler := handler.NewAdminHandler(globalAdmin, logger)
	authHandler := handler.NewAuthHandler(authUseCase, logger)

	rateLimiter := middleware.NewTenantRateLimiter(cfg.TenantRatePerSec, cfg.TenantRateBurst, m)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(logger, m))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/impersonate", authHandler.Impersonate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTSecret, logger))
			r.Use(middleware.Tenant)
			r.Use(rateLimiter.Handler)

			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Create)
			r.Post("/categories/seed", categoryHandler.Seed)
			r.Patch("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTSecret, logger))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Delete("/admin/global-categories/{id}", adminHandler.DeleteGlobalCategory)
		})
	})

	return r
}
