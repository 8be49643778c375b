package handler

import (
	"auth-service/internal/logging"
	"auth-service/internal/util"
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RateLimiter : счетчик запросов клиента в текущем окне
type RateLimiter interface {
	Allow(ctx context.Context, clientKey string) (bool, time.Duration, error)
}

// RequestLogger пишет строку access-лога на каждый запрос. Уровень зависит от класса статуса.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start).String(),
				"user_agent", r.UserAgent(),
				"ip", clientIP(r),
				"request_id", middleware.GetReqID(r.Context()),
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error(r.Context(), "http запрос", args...)
			case status >= http.StatusBadRequest:
				log.Warn(r.Context(), "http запрос", args...)
			default:
				log.Info(r.Context(), "http запрос", args...)
			}
		})
	}
}

// RateLimit ограничивает число запросов с одного IP. Если хранилище счетчиков
// недоступно, запрос пропускается.
func RateLimit(limiter RateLimiter, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn(r.Context(), "rate limiter недоступен, запрос пропущен", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				util.HandleError(w, "ThrottlerException: Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
