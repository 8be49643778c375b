package service_test

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/repository"
	"auth-service/internal/security"
	"auth-service/internal/service"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ===== IN-MEMORY ХРАНИЛИЩА =====

type memTx struct{}

func (memTx) Executor() sqlx.ExtContext { return nil }

func (memTx) WithinTransaction(_ context.Context, fn func(exec sqlx.ExtContext) error) error {
	return fn(nil)
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*model.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, _ sqlx.ExtContext, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
		if u.Username == user.Username {
			return nil, fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
	}
	stored := *user
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.users[user.UUID] = &stored
	out := stored
	return &out, nil
}

func (m *memUsers) find(match func(u *model.User) bool, includeDeleted bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (includeDeleted || u.DeletedAt == nil) && match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByUUID(_ context.Context, _ sqlx.ExtContext, uuid string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.UUID == uuid }, false)
}

func (m *memUsers) FindByUsername(_ context.Context, _ sqlx.ExtContext, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username }, false)
}

func (m *memUsers) FindByEmail(_ context.Context, _ sqlx.ExtContext, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email }, false)
}

func (m *memUsers) FindByUsernameOrEmail(_ context.Context, _ sqlx.ExtContext, username, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email || u.Username == username }, true)
}

func (m *memUsers) UpdatePassword(_ context.Context, _ sqlx.ExtContext, uuid, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uuid]
	if !ok || u.DeletedAt != nil {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) SoftDelete(_ context.Context, _ sqlx.ExtContext, uuid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uuid]
	if !ok || u.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	u.DeletedAt = &now
	return true, nil
}

func (m *memUsers) ListUsers(_ context.Context, _ sqlx.ExtContext, _ string, limit int) ([]*model.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.DeletedAt == nil && len(out) < limit {
			c := *u
			out = append(out, &c)
		}
	}
	return out, "", nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type memRefreshLedger struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newMemRefreshLedger() *memRefreshLedger {
	return &memRefreshLedger{tokens: map[string]*model.RefreshToken{}}
}

func (m *memRefreshLedger) SaveRefreshToken(_ context.Context, _ sqlx.ExtContext, token *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tokens[token.Token]; exists {
		return repository.ErrDuplicate
	}
	stored := *token
	m.tokens[token.Token] = &stored
	return nil
}

func (m *memRefreshLedger) FindByToken(_ context.Context, _ sqlx.ExtContext, token string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *memRefreshLedger) RevokeRefreshToken(_ context.Context, _ sqlx.ExtContext, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked = true
	return true, nil
}

func (m *memRefreshLedger) RevokeAllForUser(_ context.Context, _ sqlx.ExtContext, userUUID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tokens {
		if t.UserUUID == userUUID && !t.IsRevoked {
			t.IsRevoked = true
			n++
		}
	}
	return n, nil
}

func (m *memRefreshLedger) get(token string) model.RefreshToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.tokens[token]
}

func (m *memRefreshLedger) expire(token string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token].ExpiresAt = at
}

type memResetLedger struct {
	mu     sync.Mutex
	tokens map[string]*model.PasswordResetToken
}

func newMemResetLedger() *memResetLedger {
	return &memResetLedger{tokens: map[string]*model.PasswordResetToken{}}
}

func (m *memResetLedger) SaveResetToken(_ context.Context, _ sqlx.ExtContext, token *model.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *token
	m.tokens[token.Token] = &stored
	return nil
}

func (m *memResetLedger) FindByToken(_ context.Context, _ sqlx.ExtContext, token string) (*model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *memResetLedger) MarkUsed(_ context.Context, _ sqlx.ExtContext, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	return true, nil
}

func (m *memResetLedger) all() []model.PasswordResetToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PasswordResetToken
	for _, t := range m.tokens {
		out = append(out, *t)
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, email, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if n.sent == nil {
		n.sent = map[string]string{}
	}
	n.sent[email] = token
	return nil
}

func (n *recordingNotifier) tokenFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[email]
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) ObserveAuth(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[operation+"/"+outcome]++
}

func (m *countingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

// ===== СБОРКА СЕРВИСА =====

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	svc      *service.AuthenticationService
	jwt      *security.JWTService
	users    *memUsers
	refresh  *memRefreshLedger
	reset    *memResetLedger
	notifier *recordingNotifier
	metrics  *countingMetrics
	clock    *clock
}

func newEnv(t *testing.T, refreshTTL string) *env {
	t.Helper()

	jwtCfg := &config.JWTConfig{
		AccessSecret:    "access-secret",
		AccessTokenTTL:  "15m",
		RefreshSecret:   "refresh-secret",
		RefreshTokenTTL: refreshTTL,
		Issuer:          "auth-service-test",
	}
	clk := &clock{now: time.Now().UTC().Truncate(time.Second)}

	jwtService, err := security.NewJWTService(jwtCfg)
	require.NoError(t, err)
	jwtService.WithClock(clk.Now)

	e := &env{
		jwt:      jwtService,
		users:    newMemUsers(),
		refresh:  newMemRefreshLedger(),
		reset:    newMemResetLedger(),
		notifier: &recordingNotifier{},
		metrics:  &countingMetrics{},
		clock:    clk,
	}

	e.svc = service.NewAuthenticationService(service.AuthenticationDeps{
		DB:          memTx{},
		Users:       e.users,
		RefreshRepo: e.refresh,
		ResetRepo:   e.reset,
		JWTService:  jwtService,
		Hasher:      security.NewBcryptHasher(bcrypt.MinCost),
		Notifier:    e.notifier,
		Metrics:     e.metrics,
		Log:         logging.Discard(),
	}, jwtCfg, &config.PasswordResetConfig{TokenTTL: "1h"}).WithClock(clk.Now)

	return e
}

func (e *env) register(t *testing.T, username string) *model.AuthResult {
	t.Helper()
	result, err := e.svc.Register(context.Background(), model.RegisterInput{
		Email:    strings.ToLower(username) + "@example.com",
		Username: username,
		Password: "secret123",
		Role:     model.RoleUser,
	})
	require.NoError(t, err)
	return result
}

func repositoryNotFound() error {
	return repository.ErrNotFound
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}
