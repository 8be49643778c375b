package config

type ServerConfig struct {
	Addr            string `yaml:"addr" env:"SERVER_ADDR"`
	BasePath        string `yaml:"base_path"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// TrustProxyHeaders : сервис стоит за прокси, который сам выставляет X-Forwarded-For
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"SERVER_TRUST_PROXY_HEADERS"`
}

type DatabaseConfig struct {
	DSN             string `yaml:"dsn" env:"DATABASE_URL"`
	QueryTimeout    string `yaml:"query_timeout"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MigrateOnStart  bool   `yaml:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START"`
	MigrationsTable string `yaml:"migrations_table"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig : ограничение запросов к /auth на один IP
type RateLimitConfig struct {
	Enabled bool   `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	Limit   int    `yaml:"limit"`
	Window  string `yaml:"window"`
}

// S3Config : бакет, в который складываются письма для внешнего почтового сервиса
type S3Config struct {
	Enabled  bool   `yaml:"enabled" env:"MAIL_OUTBOX_ENABLED"`
	Bucket   string `yaml:"bucket" env:"MAIL_OUTBOX_BUCKET"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region" env:"AWS_REGION"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

// JWTConfig : две независимые пары секрет/время жизни для access и refresh токенов.
// Смена секрета инвалидирует все выданные под старым секретом токены.
type JWTConfig struct {
	AccessSecret    string `yaml:"access_secret" env:"JWT_SECRET"`
	AccessTokenTTL  string `yaml:"access_token_ttl" env:"JWT_EXPIRATION"`
	RefreshSecret   string `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_EXPIRATION"`
	Issuer          string `yaml:"issuer"`
}

type PasswordResetConfig struct {
	TokenTTL string `yaml:"token_ttl"`
	LinkBase string `yaml:"link_base" env:"RESET_LINK_BASE"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}
