package security

import (
	"auth-service/internal/model"
	"auth-service/internal/util"
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

var ErrNoClaims = errors.New("пользователь не авторизован")

type AccessTokenValidator interface {
	ValidateAccessToken(tokenStr string) (*Claims, error)
}

// JWTMiddleware пропускает запрос только с валидным access токеном в заголовке
// Authorization: Bearer <token> и кладет Claims в контекст
func JWTMiddleware(validator AccessTokenValidator) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				util.HandleError(writer, "Unauthorized", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				util.HandleError(writer, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(writer, request.WithContext(WithClaims(request.Context(), claims)))
		})
	}
}

// RequireRole пропускает только пользователей с одной из ролей; ставится после JWTMiddleware
func RequireRole(roles ...model.Role) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims, err := GetClaimsFromContext(request.Context())
			if err != nil {
				util.HandleError(writer, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(roles, claims.Role) {
				util.HandleError(writer, "Forbidden resource", http.StatusForbidden)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}
