package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerAddr      = ":3000"
	defaultBasePath        = "/api/v1"
	defaultAccessTokenTTL  = "15m"
	defaultRefreshTokenTTL = "7d"
	defaultResetTokenTTL   = "1h"
	defaultIssuer          = "auth-service"
	defaultBcryptCost      = 10
	defaultRateLimit       = 10
	defaultRateLimitWindow = "60s"
	defaultQueryTimeout    = "5s"
	defaultReadTimeout     = "10s"
	defaultWriteTimeout    = "10s"
	defaultShutdownTimeout = "5s"
	defaultMigrationsTable = "goose_db_version"
)

type AppConfig struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	MailOutbox    S3Config            `yaml:"mail_outbox"`
	JWT           JWTConfig           `yaml:"jwt"`
	PasswordReset PasswordResetConfig `yaml:"password_reset"`
	Log           LogConfig           `yaml:"log"`
	Security      SecurityConfig      `yaml:"security"`
}

// LoadConfig читает YAML (если файл есть), поверх накладывает переменные окружения,
// заполняет значения по умолчанию и проверяет результат.
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// конфигурация целиком из окружения
	default:
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = defaultBasePath
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = defaultReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = defaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Database.QueryTimeout == "" {
		c.Database.QueryTimeout = defaultQueryTimeout
	}
	if c.Database.MigrationsTable == "" {
		c.Database.MigrationsTable = defaultMigrationsTable
	}
	if c.JWT.AccessTokenTTL == "" {
		c.JWT.AccessTokenTTL = defaultAccessTokenTTL
	}
	if c.JWT.RefreshTokenTTL == "" {
		c.JWT.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = defaultIssuer
	}
	if c.PasswordReset.TokenTTL == "" {
		c.PasswordReset.TokenTTL = defaultResetTokenTTL
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = defaultRateLimit
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = defaultRateLimitWindow
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = defaultBcryptCost
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate проверяет обязательные поля и формат длительностей
func (c *AppConfig) Validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("jwt: access_secret и refresh_secret обязательны")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt: access_secret и refresh_secret должны различаться")
	}

	durations := map[string]string{
		"jwt.access_token_ttl":     c.JWT.AccessTokenTTL,
		"jwt.refresh_token_ttl":    c.JWT.RefreshTokenTTL,
		"password_reset.token_ttl": c.PasswordReset.TokenTTL,
		"rate_limit.window":        c.RateLimit.Window,
		"database.query_timeout":   c.Database.QueryTimeout,
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
	}
	for name, value := range durations {
		if _, err := ParseTTL(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.MailOutbox.Enabled && c.MailOutbox.Bucket == "" {
		return errors.New("mail_outbox: bucket обязателен, если outbox включен")
	}

	return nil
}

// Duration возвращает уже проверенную длительность; вызывать только после Validate
func Duration(value string) time.Duration {
	d, _ := ParseTTL(value)
	return d
}

func SetupServer(cfg *ServerConfig) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  Duration(cfg.ReadTimeout),
		WriteTimeout: Duration(cfg.WriteTimeout),
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
