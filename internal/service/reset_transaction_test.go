package service_test

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/repository"
	"auth-service/internal/security"
	"auth-service/internal/service"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Сброс пароля поверх настоящих репозиториев и config.Database:
// проверяем, что все изменения фиксируются или откатываются вместе.

const (
	qFindReset     = `SELECT token, user_uuid, expires_at, used, created_at, used_at FROM password_reset_tokens WHERE token = \$1`
	qUpdatePass    = `UPDATE users SET password_hash = \$2, updated_at = NOW\(\) WHERE uuid = \$1 AND deleted_at IS NULL`
	qMarkUsed      = `UPDATE password_reset_tokens SET used = TRUE, used_at = NOW\(\) WHERE token = \$1 AND used = FALSE`
	qRevokeAllUser = `UPDATE refresh_tokens SET is_revoked = TRUE, revoked_at = NOW\(\) WHERE user_uuid = \$1 AND is_revoked = FALSE`
)

func newSQLResetService(t *testing.T) (*service.AuthenticationService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	log := logging.Discard()
	svc := service.NewAuthenticationService(service.AuthenticationDeps{
		DB:          &config.Database{DB: sqlx.NewDb(db, "postgres")},
		Users:       repository.NewUserRepository(log),
		RefreshRepo: repository.NewJWTRepository(log),
		ResetRepo:   repository.NewPasswordResetRepository(log),
		Hasher:      security.NewBcryptHasher(bcrypt.MinCost),
		Log:         log,
	}, &config.JWTConfig{RefreshTokenTTL: "7d"}, &config.PasswordResetConfig{TokenTTL: "1h"})

	return svc, mock
}

func expectResetTokenRow(mock sqlmock.Sqlmock, token string) {
	now := time.Now()
	mock.ExpectQuery(qFindReset).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_uuid", "expires_at", "used", "created_at", "used_at"}).
			AddRow(token, "u-1", now.Add(time.Hour), false, now, nil))
}

func TestResetPassword_Transaction(t *testing.T) {
	const token = "reset-token"

	t.Run("все изменения фиксируются вместе", func(t *testing.T) {
		svc, mock := newSQLResetService(t)

		mock.ExpectBegin()
		expectResetTokenRow(mock, token)
		mock.ExpectExec(qUpdatePass).WithArgs("u-1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(qMarkUsed).WithArgs(token).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(qRevokeAllUser).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		res, err := svc.ResetPassword(context.Background(), token, "new-secret")

		require.NoError(t, err)
		assert.Equal(t, service.MsgPasswordReset, res.Message)
	})

	t.Run("ошибка отзыва сессий откатывает пароль и пометку токена", func(t *testing.T) {
		svc, mock := newSQLResetService(t)

		mock.ExpectBegin()
		expectResetTokenRow(mock, token)
		mock.ExpectExec(qUpdatePass).WithArgs("u-1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(qMarkUsed).WithArgs(token).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(qRevokeAllUser).WithArgs("u-1").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		res, err := svc.ResetPassword(context.Background(), token, "new-secret")

		require.Error(t, err)
		assert.Nil(t, res)
		assert.False(t, errors.Is(err, service.ErrValidationFailed))
	})

	t.Run("токен уже использован параллельным запросом", func(t *testing.T) {
		svc, mock := newSQLResetService(t)

		mock.ExpectBegin()
		expectResetTokenRow(mock, token)
		mock.ExpectExec(qUpdatePass).WithArgs("u-1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(qMarkUsed).WithArgs(token).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		res, err := svc.ResetPassword(context.Background(), token, "new-secret")

		assertServiceError(t, err, service.ErrValidationFailed, service.MsgInvalidResetToken)
		assert.Nil(t, res)
	})
}
