package service

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/ports"
	"auth-service/internal/repository"
	"auth-service/internal/util"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgLoggedOut           = "Logged out successfully"
	MsgAllTokensRevoked    = "All refresh tokens revoked"
	MsgResetLinkSent       = "If the email exists, a password reset link has been sent"
	MsgInvalidResetToken   = "Invalid or expired reset token"
	MsgResetTokenExpired   = "Reset token has expired"
	MsgPasswordReset       = "Password reset successfully"
	MsgEmailExists         = "Email already exists"
	MsgUsernameExists      = "Username already exists"

	resetTokenBytes  = 32
	notifyTimeout    = 5 * time.Second
	dummyPasswordRaw = "timing-equalizer-password"
)

// AuthenticationDeps : зависимости оркестратора аутентификации
type AuthenticationDeps struct {
	DB          ports.Transactor
	Users       ports.UserRepository
	RefreshRepo ports.JWTRepositoryInterface
	ResetRepo   ports.PasswordResetRepository
	JWTService  ports.JWTServiceInterface
	Hasher      ports.PasswordHasher
	Notifier    ports.Notifier
	Metrics     ports.AuthMetrics
	Log         logging.Logger
}

type AuthenticationService struct {
	AuthenticationDeps

	// срок жизни записи в журнале refresh-токенов, может отличаться от exp в самом JWT
	ledgerTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticationService(deps AuthenticationDeps, jwtCfg *config.JWTConfig, resetCfg *config.PasswordResetConfig) *AuthenticationService {
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	deps.Log = deps.Log.With("component", "AuthenticationService")

	return &AuthenticationService{
		AuthenticationDeps: deps,
		ledgerTTL:          time.Duration(config.LedgerDays(jwtCfg.RefreshTokenTTL)) * 24 * time.Hour,
		resetTTL:           config.Duration(resetCfg.TokenTTL),
		now:                time.Now,
	}
}

// WithClock подменяет источник времени (для тестов)
func (s *AuthenticationService) WithClock(now func() time.Time) *AuthenticationService {
	s.now = now
	return s
}

// ValidateCredentials ищет пользователя по username и сверяет пароль.
// Если пользователя нет, пароль все равно сравнивается с фиктивным хэшем,
// чтобы ответ по времени не выдавал существование учетной записи.
func (s *AuthenticationService) ValidateCredentials(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.Users.FindByUsername(ctx, s.DB.Executor(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Hasher.Compare(s.fakeHash(), password)
			s.Metrics.ObserveAuth("login", "invalid_credentials")
			return nil, NewError(ErrInvalidCredentials, MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("не удалось найти пользователя: %w", err)
	}

	if !s.Hasher.Compare(user.PasswordHash, password) {
		s.Metrics.ObserveAuth("login", "invalid_credentials")
		return nil, NewError(ErrInvalidCredentials, MsgInvalidCredentials)
	}

	return user, nil
}

func (s *AuthenticationService) fakeHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.Hasher.Hash(dummyPasswordRaw)
		if err != nil {
			s.Log.Warn(context.Background(), "не удалось подготовить фиктивный хэш", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// IssueTokenPair подписывает пару токенов и записывает refresh-токен в журнал.
// Токен возвращается только после успешной записи.
func (s *AuthenticationService) IssueTokenPair(ctx context.Context, user *model.User) (*model.TokensPair, error) {
	return s.issueTokenPair(ctx, s.DB.Executor(), user)
}

func (s *AuthenticationService) issueTokenPair(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.TokensPair, error) {
	pair, err := s.JWTService.GenerateTokenPair(model.ClaimsFromUser(user))
	if err != nil {
		return nil, util.LogError(ctx, s.Log, "ошибка генерации токенов", err)
	}

	err = s.RefreshRepo.SaveRefreshToken(ctx, exec, &model.RefreshToken{
		Token:     pair.RefreshToken,
		UserUUID:  user.UUID,
		ExpiresAt: s.now().Add(s.ledgerTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось сохранить refresh токен: %w", err)
	}

	return pair, nil
}

// Register создает пользователя и сразу выдает ему пару токенов.
// Пользователь и его первый refresh-токен записываются в одной транзакции.
func (s *AuthenticationService) Register(ctx context.Context, input model.RegisterInput) (*model.AuthResult, error) {
	existing, err := s.Users.FindByUsernameOrEmail(ctx, s.DB.Executor(), input.Username, input.Email)
	switch {
	case err == nil:
		s.Metrics.ObserveAuth("register", "conflict")
		if existing.Email == input.Email {
			return nil, NewError(ErrConflict, MsgEmailExists)
		}
		return nil, NewError(ErrConflict, MsgUsernameExists)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("не удалось проверить уникальность: %w", err)
	}

	hash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		return nil, util.LogError(ctx, s.Log, "не удалось создать хэш пароля", err)
	}

	role := input.Role
	if role == "" {
		role = model.RoleUser
	}

	var result *model.AuthResult
	err = s.DB.WithinTransaction(ctx, func(exec sqlx.ExtContext) error {
		created, err := s.Users.CreateUser(ctx, exec, &model.User{
			UUID:         uuid.New().String(),
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: hash,
			Role:         role,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// проиграли гонку с параллельной регистрацией
				if strings.Contains(err.Error(), "email") {
					return NewError(ErrConflict, MsgEmailExists)
				}
				return NewError(ErrConflict, MsgUsernameExists)
			}
			return fmt.Errorf("ошибка создания пользователя: %w", err)
		}

		pair, err := s.issueTokenPair(ctx, exec, created)
		if err != nil {
			return err
		}

		result = &model.AuthResult{User: created.Public(), TokensPair: *pair}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.Metrics.ObserveAuth("register", "conflict")
		}
		return nil, err
	}

	s.Metrics.ObserveAuth("register", "success")
	s.Log.Info(ctx, "зарегистрирован пользователь", "user_uuid", result.User.ID)
	return result, nil
}

// Login выдает пару токенов уже проверенному пользователю
func (s *AuthenticationService) Login(ctx context.Context, user *model.User) (*model.AuthResult, error) {
	pair, err := s.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.Metrics.ObserveAuth("login", "success")
	return &model.AuthResult{User: user.Public(), TokensPair: *pair}, nil
}

// RotateRefreshToken обменивает refresh-токен на новую пару.
// Старый токен отзывается compare-and-set обновлением: из параллельных попыток
// с одним токеном успешна ровно одна. Отзыв фиксируется сразу и не откатывается,
// даже если выдать новую пару не удалось.
// Любая ошибка возвращается клиенту как "Invalid refresh token".
func (s *AuthenticationService) RotateRefreshToken(ctx context.Context, refreshToken string) (*model.AuthResult, error) {
	result, err := s.rotate(ctx, refreshToken)
	if err != nil {
		s.Log.Warn(ctx, "отказ в обновлении токена", "error", err)
		s.Metrics.ObserveAuth("refresh", "rejected")
		return nil, wrapError(ErrUnauthorized, MsgInvalidRefreshToken, err)
	}

	s.Metrics.ObserveAuth("refresh", "success")
	return result, nil
}

func (s *AuthenticationService) rotate(ctx context.Context, refreshToken string) (*model.AuthResult, error) {
	if _, err := s.JWTService.ValidateRefreshToken(refreshToken); err != nil {
		return nil, fmt.Errorf("невалидная подпись или срок: %w", err)
	}

	exec := s.DB.Executor()

	stored, err := s.RefreshRepo.FindByToken(ctx, exec, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("токен не найден в журнале: %w", err)
	}
	if !stored.Usable(s.now()) {
		return nil, fmt.Errorf("токен отозван или истек (is_revoked=%t, expires_at=%s)", stored.IsRevoked, stored.ExpiresAt.Format(time.RFC3339))
	}

	revoked, err := s.RefreshRepo.RevokeRefreshToken(ctx, exec, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("не удалось отозвать токен: %w", err)
	}
	if !revoked {
		return nil, errors.New("токен отозван параллельным запросом")
	}

	user, err := s.Users.FindByUUID(ctx, exec, stored.UserUUID)
	if err != nil {
		return nil, fmt.Errorf("владелец токена не найден: %w", err)
	}

	pair, err := s.issueTokenPair(ctx, exec, user)
	if err != nil {
		return nil, err
	}

	return &model.AuthResult{User: user.Public(), TokensPair: *pair}, nil
}

// Logout отзывает refresh-токен. Повторный logout и неизвестный токен не ошибка.
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) (*model.MessageResult, error) {
	revoked, err := s.RefreshRepo.RevokeRefreshToken(ctx, s.DB.Executor(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("не удалось отозвать токен: %w", err)
	}

	s.Log.Debug(ctx, "logout", "revoked", revoked)
	s.Metrics.ObserveAuth("logout", "success")
	return &model.MessageResult{Message: MsgLoggedOut}, nil
}

// RevokeAllUserTokens отзывает все действующие refresh-токены пользователя
func (s *AuthenticationService) RevokeAllUserTokens(ctx context.Context, userUUID string) (*model.MessageResult, error) {
	count, err := s.RefreshRepo.RevokeAllForUser(ctx, s.DB.Executor(), userUUID)
	if err != nil {
		return nil, fmt.Errorf("не удалось отозвать токены пользователя: %w", err)
	}

	s.Log.Info(ctx, "отозваны все refresh токены", "user_uuid", userUUID, "count", count)
	s.Metrics.ObserveAuth("revoke_all", "success")
	return &model.MessageResult{Message: MsgAllTokensRevoked}, nil
}

// ForgotPassword выдает токен сброса пароля. Ответ одинаков для существующего
// и несуществующего email; ошибки записи токена и отправки только логируются.
func (s *AuthenticationService) ForgotPassword(ctx context.Context, email string) (*model.MessageResult, error) {
	result := &model.MessageResult{Message: MsgResetLinkSent}

	user, err := s.Users.FindByEmail(ctx, s.DB.Executor(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Metrics.ObserveAuth("forgot_password", "unknown_email")
			return result, nil
		}
		return nil, fmt.Errorf("не удалось найти пользователя: %w", err)
	}

	token, err := util.GenerateRandomToken(resetTokenBytes)
	if err != nil {
		s.Log.Error(ctx, "не удалось сгенерировать токен сброса", "error", err)
		s.Metrics.ObserveAuth("forgot_password", "error")
		return result, nil
	}

	expiresAt := s.now().Add(s.resetTTL)
	err = s.ResetRepo.SaveResetToken(ctx, s.DB.Executor(), &model.PasswordResetToken{
		Token:     token,
		UserUUID:  user.UUID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.Log.Error(ctx, "не удалось сохранить токен сброса", "user_uuid", user.UUID, "error", err)
		s.Metrics.ObserveAuth("forgot_password", "error")
		return result, nil
	}

	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.Notifier.SendPasswordReset(notifyCtx, user.Email, token, expiresAt); err != nil {
		s.Log.Error(ctx, "не удалось отправить токен сброса", "user_uuid", user.UUID, "error", err)
		s.Metrics.ObserveAuth("forgot_password", "error")
		return result, nil
	}

	s.Metrics.ObserveAuth("forgot_password", "success")
	return result, nil
}

// ResetPassword меняет пароль по токену сброса. В одной транзакции: пароль,
// пометка токена использованным и отзыв всех refresh-токенов пользователя.
func (s *AuthenticationService) ResetPassword(ctx context.Context, token, newPassword string) (*model.MessageResult, error) {
	err := s.DB.WithinTransaction(ctx, func(exec sqlx.ExtContext) error {
		resetToken, err := s.ResetRepo.FindByToken(ctx, exec, token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrValidationFailed, MsgInvalidResetToken)
			}
			return fmt.Errorf("не удалось найти токен сброса: %w", err)
		}
		if resetToken.Used {
			return NewError(ErrValidationFailed, MsgInvalidResetToken)
		}
		if s.now().After(resetToken.ExpiresAt) {
			return NewError(ErrValidationFailed, MsgResetTokenExpired)
		}

		hash, err := s.Hasher.Hash(newPassword)
		if err != nil {
			return util.LogError(ctx, s.Log, "не удалось создать хэш пароля", err)
		}

		if err := s.Users.UpdatePassword(ctx, exec, resetToken.UserUUID, hash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrValidationFailed, MsgInvalidResetToken)
			}
			return fmt.Errorf("не удалось обновить пароль: %w", err)
		}

		marked, err := s.ResetRepo.MarkUsed(ctx, exec, token)
		if err != nil {
			return fmt.Errorf("не удалось пометить токен сброса: %w", err)
		}
		if !marked {
			return NewError(ErrValidationFailed, MsgInvalidResetToken)
		}

		count, err := s.RefreshRepo.RevokeAllForUser(ctx, exec, resetToken.UserUUID)
		if err != nil {
			return fmt.Errorf("не удалось отозвать сессии: %w", err)
		}

		s.Log.Info(ctx, "пароль сброшен", "user_uuid", resetToken.UserUUID, "revoked_sessions", count)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidationFailed) {
			s.Metrics.ObserveAuth("reset_password", "rejected")
		}
		return nil, err
	}

	s.Metrics.ObserveAuth("reset_password", "success")
	return &model.MessageResult{Message: MsgPasswordReset}, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveAuth(string, string) {}
