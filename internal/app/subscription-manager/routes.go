// Package subscriptionmanager предоставляет маршруты для основного приложения.
package subscriptionmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/plan/plancreate"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/plan/planlist"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/active"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/upgrade"
	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
	planservice "github.com/magabrotheeeer/subscription-manager/internal/services/plan"
	subservice "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	planService *planservice.PlanService,
	subscriptionService *subservice.SubscriptionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register-user", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger, planService).ServeHTTP)
		r.Post("/plans", plancreate.New(logger, planService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/active", active.New(logger, subscriptionService).ServeHTTP)
			r.Put("/subscriptions/upgrade", upgrade.New(logger, subscriptionService).ServeHTTP)
			r.Patch("/subscriptions/cancel", cancel.New(logger, subscriptionService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
