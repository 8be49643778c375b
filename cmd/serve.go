package main

import (
	"auth-service/config"
	"auth-service/internal/handler"
	"auth-service/internal/logging"
	"auth-service/internal/metrics"
	"auth-service/internal/migrations"
	"auth-service/internal/notifier"
	"auth-service/internal/ports"
	"auth-service/internal/repository"
	"auth-service/internal/security"
	"auth-service/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	db, err := config.SetupDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error(ctx, "ошибка при закрытии БД", "error", err)
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(ctx, db.DB.DB, cfg.Database.MigrationsTable); err != nil {
			return err
		}
	}

	var limiter handler.RateLimiter
	if cfg.RateLimit.Enabled {
		redisClient, err := config.SetupRedis(&cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error(ctx, "ошибка при закрытии Redis", "error", err)
			}
		}()
		limiter = repository.NewRateLimitRepository(redisClient, cfg.RateLimit.Limit, config.Duration(cfg.RateLimit.Window), log)
	}

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		return err
	}
	warnLedgerMismatch(ctx, log, cfg.JWT.RefreshTokenTTL)

	resetNotifier, err := newNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()

	userRepo := repository.NewUserRepository(log)
	jwtRepo := repository.NewJWTRepository(log)
	resetRepo := repository.NewPasswordResetRepository(log)

	authService := service.NewAuthenticationService(service.AuthenticationDeps{
		DB:          db,
		Users:       userRepo,
		RefreshRepo: jwtRepo,
		ResetRepo:   resetRepo,
		JWTService:  jwtService,
		Hasher:      security.NewBcryptHasher(cfg.Security.BcryptCost),
		Notifier:    resetNotifier,
		Metrics:     recorder,
		Log:         log,
	}, &cfg.JWT, &cfg.PasswordReset)
	userService := service.NewUserService(db, userRepo, jwtRepo, log)

	srv, router := config.SetupServer(&cfg.Server)
	handler.RegisterRoutes(router, handler.RouterDeps{
		Auth:           handler.NewAuthenticationHandler(authService, log),
		Users:          handler.NewUserHandler(userService, log),
		Tokens:         jwtService,
		Limiter:        limiter,
		Metrics:        recorder,
		Log:            log,
		BasePath:       cfg.Server.BasePath,
		RequestTimeout: config.Duration(cfg.Database.QueryTimeout),
		Health:         db.PingContext,

		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	})

	return runServer(ctx, srv, config.Duration(cfg.Server.ShutdownTimeout), log)
}

func newNotifier(ctx context.Context, cfg *config.AppConfig, log logging.Logger) (ports.Notifier, error) {
	if !cfg.MailOutbox.Enabled {
		return notifier.NewLogNotifier(cfg.PasswordReset.LinkBase, log), nil
	}

	client, err := notifier.NewS3Client(ctx, &cfg.MailOutbox, log)
	if err != nil {
		return nil, err
	}
	return notifier.NewS3Notifier(client, cfg.MailOutbox.Bucket, cfg.MailOutbox.Prefix, cfg.PasswordReset.LinkBase, log), nil
}

// срок записи в журнале берется из числового префикса refresh_token_ttl
func warnLedgerMismatch(ctx context.Context, log logging.Logger, refreshTTL string) {
	ledger := time.Duration(config.LedgerDays(refreshTTL)) * 24 * time.Hour
	signed := config.Duration(refreshTTL)
	if ledger != signed {
		log.Warn(ctx, "срок жизни записи refresh токена отличается от срока в подписи",
			"refresh_token_ttl", refreshTTL,
			"ledger_ttl", ledger.String(),
			"signed_ttl", signed.String(),
		)
	}
}

func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, log logging.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info(ctx, "сервер запущен", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChannel)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка работы сервера: %w", err)
		}
		return nil
	case sig := <-signalChannel:
		log.Info(ctx, "получен сигнал остановки сервера", "signal", sig.String())
	case <-ctx.Done():
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		return fmt.Errorf("ошибка при остановке сервера: %w", err)
	}
	log.Info(ctx, "сервер успешно остановлен")
	return nil
}
