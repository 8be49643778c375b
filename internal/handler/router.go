package handler

import (
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/security"
	"auth-service/internal/util"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps : все, что нужно для сборки маршрутов
type RouterDeps struct {
	Auth           *AuthenticationHandler
	Users          *UserHandler
	Tokens         security.AccessTokenValidator
	Limiter        RateLimiter // nil - без ограничения
	Metrics        MetricsMiddleware
	Log            logging.Logger
	BasePath       string
	RequestTimeout time.Duration
	Health         func(ctx context.Context) error
	// TrustProxyHeaders: брать IP клиента из X-Forwarded-For / X-Real-IP.
	// Включать только за доверенным прокси, иначе клиент сам выбирает ключ rate limit.
	TrustProxyHeaders bool
}

// MetricsMiddleware : счетчики HTTP запросов и обработчик /metrics
type MetricsMiddleware interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

func RegisterRoutes(router chi.Router, deps RouterDeps) {
	router.Use(middleware.RequestID)
	if deps.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(RequestLogger(deps.Log))
	router.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/healthz", healthHandler(deps.Health))

	router.Route(deps.BasePath, func(r chi.Router) {
		if deps.RequestTimeout > 0 {
			r.Use(middleware.Timeout(deps.RequestTimeout))
		}

		r.Route("/auth", func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(RateLimit(deps.Limiter, deps.Log))
			}

			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.Post("/logout", deps.Auth.Logout)
			r.Post("/forgot-password", deps.Auth.ForgotPassword)
			r.Post("/reset-password", deps.Auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(security.JWTMiddleware(deps.Tokens))
				r.Get("/profile", deps.Auth.Profile)
				r.Post("/revoke-all", deps.Auth.RevokeAll)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(security.JWTMiddleware(deps.Tokens))

			r.With(security.RequireRole(model.RoleAdmin, model.RoleSuperAdmin)).Get("/", deps.Users.ListUsers)
			r.Get("/{id}", deps.Users.GetUser)
			r.With(security.RequireRole(model.RoleSuperAdmin)).Delete("/{id}", deps.Users.DeleteUser)
		})
	})
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				util.HandleError(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
