package ports

import (
	"auth-service/internal/model"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type AuthenticationService interface {
	ValidateCredentials(ctx context.Context, username, password string) (*model.User, error)
	Register(ctx context.Context, input model.RegisterInput) (*model.AuthResult, error)
	Login(ctx context.Context, user *model.User) (*model.AuthResult, error)
	RotateRefreshToken(ctx context.Context, refreshToken string) (*model.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (*model.MessageResult, error)
	RevokeAllUserTokens(ctx context.Context, userUUID string) (*model.MessageResult, error)
	ForgotPassword(ctx context.Context, email string) (*model.MessageResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*model.MessageResult, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Notifier доставляет токен сброса пароля пользователю
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}

// Transactor : доступ к БД для репозиториев - одиночные запросы или транзакция
type Transactor interface {
	Executor() sqlx.ExtContext
	WithinTransaction(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

// AuthMetrics : счетчики исходов операций
type AuthMetrics interface {
	ObserveAuth(operation, outcome string)
}
