package ports

import (
	"auth-service/internal/model"
	"auth-service/internal/security"
	"context"

	"github.com/jmoiron/sqlx"
)

// JWTRepositoryInterface : журнал выданных refresh-токенов
type JWTRepositoryInterface interface {
	SaveRefreshToken(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error
	FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.RefreshToken, error)
	// RevokeRefreshToken помечает токен отозванным, только если он еще не отозван.
	// Возвращает true, если отозвал именно этот вызов.
	RevokeRefreshToken(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, error)
}

// PasswordResetRepository : журнал токенов сброса пароля
type PasswordResetRepository interface {
	SaveResetToken(ctx context.Context, exec sqlx.ExtContext, token *model.PasswordResetToken) error
	FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.PasswordResetToken, error)
	// MarkUsed помечает токен использованным, только если он еще не использован
	MarkUsed(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error)
}

type JWTServiceInterface interface {
	GenerateTokenPair(claims model.TokenClaims) (*model.TokensPair, error)
	ValidateAccessToken(tokenStr string) (*security.Claims, error)
	ValidateRefreshToken(tokenStr string) (*security.Claims, error)
}
