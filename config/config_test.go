package config_test

import (
	"auth-service/config"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_YAMLAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8081"
jwt:
  access_secret: "access"
  refresh_secret: "refresh"
database:
  dsn: "postgres://localhost/auth"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, "15m", cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "7d", cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, "1h", cfg.PasswordReset.TokenTTL)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, "postgres://localhost/auth", cfg.Database.DSN)
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
jwt:
  access_secret: "from-yaml"
  refresh_secret: "refresh-yaml"
  access_token_ttl: "5m"
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REFRESH_TOKEN_EXPIRATION", "14d")
	t.Setenv("DATABASE_URL", "postgres://env/auth")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.AccessSecret)
	assert.Equal(t, "refresh-yaml", cfg.JWT.RefreshSecret)
	assert.Equal(t, "5m", cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "14d", cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, "postgres://env/auth", cfg.Database.DSN)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "b")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoadConfig_SecondsWithoutUnit(t *testing.T) {
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "b")
	t.Setenv("REFRESH_TOKEN_EXPIRATION", "604800")
	t.Setenv("SERVER_TRUST_PROXY_HEADERS", "true")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, config.Duration(cfg.JWT.RefreshTokenTTL))
	assert.True(t, cfg.Server.TrustProxyHeaders)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError string
	}{
		{
			name:        "missing secrets",
			body:        "jwt: {}",
			expectError: "обязательны",
		},
		{
			name: "same secrets",
			body: `
jwt:
  access_secret: "same"
  refresh_secret: "same"
`,
			expectError: "должны различаться",
		},
		{
			name: "bad ttl",
			body: `
jwt:
  access_secret: "a"
  refresh_secret: "b"
  access_token_ttl: "soon"
`,
			expectError: "jwt.access_token_ttl",
		},
		{
			name: "outbox without bucket",
			body: `
jwt:
  access_secret: "a"
  refresh_secret: "b"
mail_outbox:
  enabled: true
`,
			expectError: "bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "15m", want: 15 * time.Minute},
		{in: "1h", want: time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d12h", want: 36 * time.Hour},
		{in: " 30s ", want: 30 * time.Second},
		{in: "604800", want: 7 * 24 * time.Hour},
		{in: "900", want: 15 * time.Minute},
		{in: "0", wantErr: true},
		{in: "-60", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "0s", wantErr: true},
		{in: "-5m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedgerDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "7d", want: 7},
		{in: "30d", want: 30},
		{in: "15m", want: 15},
		{in: "14", want: 14},
		{in: "m15", want: 7},
		{in: "0d", want: 7},
		{in: "", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, config.LedgerDays(tt.in))
		})
	}
}
