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

type PasswordResetRepository struct {
	log logging.Logger
}

func NewPasswordResetRepository(log logging.Logger) *PasswordResetRepository {
	return &PasswordResetRepository{log: log.With("component", "PasswordResetRepo")}
}

// SaveResetToken : сохраняет выданный токен сброса пароля
func (r *PasswordResetRepository) SaveResetToken(ctx context.Context, exec sqlx.ExtContext, resetToken *model.PasswordResetToken) error {
	query := `INSERT INTO password_reset_tokens (token, user_uuid, expires_at, used) VALUES ($1, $2, $3, $4)`

	_, err := exec.ExecContext(ctx, query,
		resetToken.Token,
		resetToken.UserUUID,
		resetToken.ExpiresAt,
		resetToken.Used,
	)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, constraint)
		}
		return util.LogError(ctx, r.log, "ошибка вставки токена сброса пароля", err)
	}

	return nil
}

// FindByToken : ищет токен сброса пароля по значению
func (r *PasswordResetRepository) FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.PasswordResetToken, error) {
	query := `SELECT token, user_uuid, expires_at, used, created_at, used_at FROM password_reset_tokens WHERE token = $1`

	resetToken := &model.PasswordResetToken{}
	err := sqlx.GetContext(ctx, exec, resetToken, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError(ctx, r.log, "ошибка при поиске токена сброса пароля", err)
	}

	return resetToken, nil
}

// MarkUsed : помечает токен использованным, только если он еще не использован
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	query := `UPDATE password_reset_tokens SET used = TRUE, used_at = NOW() WHERE token = $1 AND used = FALSE`

	result, err := exec.ExecContext(ctx, query, token)
	if err != nil {
		return false, util.LogError(ctx, r.log, "не удалось пометить токен сброса использованным", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError(ctx, r.log, "не удалось проверить, помечен ли токен сброса", err)
	}

	return rowsAffected > 0, nil
}
