package service_test

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/security"
	"auth-service/internal/service"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== MOCKS =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	args := m.Called(ctx, exec, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error) {
	args := m.Called(ctx, exec, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	args := m.Called(ctx, exec, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, exec sqlx.ExtContext, username, email string) (*model.User, error) {
	args := m.Called(ctx, exec, username, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid string, newPasswordHash string) error {
	args := m.Called(ctx, exec, uuid, newPasswordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error) {
	args := m.Called(ctx, exec, uuid)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, exec sqlx.ExtContext, cursor string, limit int) ([]*model.User, string, error) {
	args := m.Called(ctx, exec, cursor, limit)
	if users, ok := args.Get(0).([]*model.User); ok {
		return users, args.String(1), args.Error(2)
	}
	return nil, "", args.Error(2)
}

type MockJWTRepo struct {
	mock.Mock
}

func (m *MockJWTRepo) SaveRefreshToken(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error {
	args := m.Called(ctx, exec, token)
	return args.Error(0)
}

func (m *MockJWTRepo) FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, exec, token)
	if t, ok := args.Get(0).(*model.RefreshToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTRepo) RevokeRefreshToken(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	args := m.Called(ctx, exec, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockJWTRepo) RevokeAllForUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, error) {
	args := m.Called(ctx, exec, userUUID)
	return args.Get(0).(int64), args.Error(1)
}

// ===== TESTS =====

func newMockedService(t *testing.T, users *MockUserRepository, refresh *MockJWTRepo) (*service.AuthenticationService, *security.JWTService) {
	t.Helper()

	jwtCfg := &config.JWTConfig{
		AccessSecret:    "access-secret",
		AccessTokenTTL:  "15m",
		RefreshSecret:   "refresh-secret",
		RefreshTokenTTL: "7d",
		Issuer:          "auth-service-test",
	}
	jwtService, err := security.NewJWTService(jwtCfg)
	require.NoError(t, err)

	svc := service.NewAuthenticationService(service.AuthenticationDeps{
		DB:          memTx{},
		Users:       users,
		RefreshRepo: refresh,
		ResetRepo:   newMemResetLedger(),
		JWTService:  jwtService,
		Hasher:      security.NewBcryptHasher(4),
		Notifier:    &recordingNotifier{},
		Log:         logging.Discard(),
	}, jwtCfg, &config.PasswordResetConfig{TokenTTL: "1h"})

	return svc, jwtService
}

func TestForgotPassword_StoreFailureIsSurfaced(t *testing.T) {
	users := new(MockUserRepository)
	svc, _ := newMockedService(t, users, new(MockJWTRepo))

	dbErr := errors.New("connection refused")
	users.On("FindByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(nil, dbErr)

	result, err := svc.ForgotPassword(context.Background(), "alice@example.com")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, dbErr)
	var svcErr *service.Error
	assert.False(t, errors.As(err, &svcErr), "сбой хранилища не должен выглядеть как ошибка клиента")
	users.AssertExpectations(t)
}

func TestRotateRefreshToken_StoreFailureIsLaundered(t *testing.T) {
	users := new(MockUserRepository)
	refresh := new(MockJWTRepo)
	svc, jwtService := newMockedService(t, users, refresh)

	pair, err := jwtService.GenerateTokenPair(model.TokenClaims{Subject: "u-1", Username: "alice", Email: "a@example.com", Role: model.RoleUser})
	require.NoError(t, err)

	refresh.On("FindByToken", mock.Anything, mock.Anything, pair.RefreshToken).Return(nil, errors.New("deadlock detected"))

	_, err = svc.RotateRefreshToken(context.Background(), pair.RefreshToken)

	assertServiceError(t, err, service.ErrUnauthorized, service.MsgInvalidRefreshToken)
	refresh.AssertExpectations(t)
	refresh.AssertNotCalled(t, "RevokeRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRotateRefreshToken_LostRace(t *testing.T) {
	users := new(MockUserRepository)
	refresh := new(MockJWTRepo)
	svc, jwtService := newMockedService(t, users, refresh)

	pair, err := jwtService.GenerateTokenPair(model.TokenClaims{Subject: "u-1", Role: model.RoleUser})
	require.NoError(t, err)

	refresh.On("FindByToken", mock.Anything, mock.Anything, pair.RefreshToken).Return(&model.RefreshToken{
		Token:     pair.RefreshToken,
		UserUUID:  "u-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	refresh.On("RevokeRefreshToken", mock.Anything, mock.Anything, pair.RefreshToken).Return(false, nil)

	_, err = svc.RotateRefreshToken(context.Background(), pair.RefreshToken)

	assertServiceError(t, err, service.ErrUnauthorized, service.MsgInvalidRefreshToken)
	users.AssertNotCalled(t, "FindByUUID", mock.Anything, mock.Anything, mock.Anything)
	refresh.AssertNotCalled(t, "SaveRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout_StoreFailure(t *testing.T) {
	refresh := new(MockJWTRepo)
	svc, _ := newMockedService(t, new(MockUserRepository), refresh)

	refresh.On("RevokeRefreshToken", mock.Anything, mock.Anything, "token").Return(false, errors.New("db down"))

	result, err := svc.Logout(context.Background(), "token")

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "db down")
}

func TestRegister_LostUniqueRace(t *testing.T) {
	users := new(MockUserRepository)
	refresh := new(MockJWTRepo)
	svc, _ := newMockedService(t, users, refresh)

	input := model.RegisterInput{Email: "alice@example.com", Username: "alice", Password: "secret123"}
	users.On("FindByUsernameOrEmail", mock.Anything, mock.Anything, "alice", "alice@example.com").
		Return(nil, repositoryNotFound())
	users.On("CreateUser", mock.Anything, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "alice@example.com" && u.Role == model.RoleUser && u.PasswordHash != "secret123"
	})).Return(nil, duplicate("users_email_key"))

	_, err := svc.Register(context.Background(), input)

	assertServiceError(t, err, service.ErrConflict, service.MsgEmailExists)
	refresh.AssertNotCalled(t, "SaveRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}
