package repository

import (
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/util"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// JWTRepository : журнал refresh-токенов. Строки не удаляются, меняется только is_revoked.
type JWTRepository struct {
	log logging.Logger
}

func NewJWTRepository(log logging.Logger) *JWTRepository {
	return &JWTRepository{log: log.With("component", "JWTRepo")}
}

// SaveRefreshToken сохраняет refresh-токен в базе данных.
// Если такой токен уже есть, возвращает ErrDuplicate.
func (r *JWTRepository) SaveRefreshToken(ctx context.Context, exec sqlx.ExtContext, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (token, user_uuid, expires_at, is_revoked)
				VALUES ($1, $2, $3, $4)
	`

	_, err := exec.ExecContext(ctx, query,
		refreshToken.Token,
		refreshToken.UserUUID,
		refreshToken.ExpiresAt,
		refreshToken.IsRevoked,
	)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, constraint)
		}
		return util.LogError(ctx, r.log, "ошибка вставки refresh токена в БД", err)
	}

	return nil
}

// FindByToken ищет запись по значению токена.
// Возвращает ErrNotFound, если такого токена не выдавали.
func (r *JWTRepository) FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.RefreshToken, error) {
	query := `SELECT token, user_uuid, expires_at, is_revoked, created_at, revoked_at FROM refresh_tokens WHERE token = $1`

	refreshToken := &model.RefreshToken{}
	err := sqlx.GetContext(ctx, exec, refreshToken, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError(ctx, r.log, "ошибка при поиске refresh токена", err)
	}

	return refreshToken, nil
}

// RevokeRefreshToken отзывает токен, только если он еще не отозван.
// Возвращает true, если строку изменил этот вызов: из двух параллельных ротаций
// одного токена true получит ровно одна.
func (r *JWTRepository) RevokeRefreshToken(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE, revoked_at = NOW() WHERE token = $1 AND is_revoked = FALSE`

	result, err := exec.ExecContext(ctx, query, token)
	if err != nil {
		return false, util.LogError(ctx, r.log, "не удалось отозвать refresh токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError(ctx, r.log, "не удалось проверить, отозван ли токен", err)
	}

	return rowsAffected > 0, nil
}

// RevokeAllForUser отзывает все еще не отозванные токены пользователя
func (r *JWTRepository) RevokeAllForUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, error) {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE, revoked_at = NOW() WHERE user_uuid = $1 AND is_revoked = FALSE`

	result, err := exec.ExecContext(ctx, query, userUUID)
	if err != nil {
		return 0, util.LogError(ctx, r.log, "не удалось отозвать токены пользователя", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError(ctx, r.log, "не удалось проверить отзыв токенов", err)
	}

	return rowsAffected, nil
}
