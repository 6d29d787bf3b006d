package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/billing"
	"github.com/japama/watercontract/internal/catalog"
	"github.com/japama/watercontract/internal/config"
	"github.com/japama/watercontract/internal/db"
	"github.com/japama/watercontract/internal/export"
	internalhttp "github.com/japama/watercontract/internal/http"
	"github.com/japama/watercontract/internal/inspection"
	"github.com/japama/watercontract/internal/mail"
	"github.com/japama/watercontract/internal/metrics"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/service"
	"github.com/japama/watercontract/internal/storage"
	"github.com/japama/watercontract/internal/verification"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func setupLogger(cfg *config.Config) {
	if cfg.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newUploader(ctx context.Context, cfg config.StorageConfig) (storage.Uploader, error) {
	switch cfg.Provider {
	case "", "noop":
		return storage.NoopUploader{}, nil
	case "s3", "r2":
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			PublicDomain: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return uploader, nil
	default:
		return nil, fmt.Errorf("STORAGE_PROVIDER desconhecido: %s", cfg.Provider)
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogger(cfg)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if cfg.DBMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	mode, err := verification.ParseMode(cfg.VerificationMode)
	if err != nil {
		return fmt.Errorf("verification: %w", err)
	}
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHash, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("password hash: %w", err)
	}
	uploader, err := newUploader(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	recorder := metrics.New()
	queries := repo.New(pool)
	sessions := service.NewSessionStore(redisClient)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.VerificationTTL)

	authService := service.NewAuthService(service.AuthDeps{
		Queries:  queries,
		Sessions: sessions,
		JWT:      jwtManager,
		Hasher:   hasher,
		Codes:    verification.NewCodeIssuer(cfg.CodeTTL),
		Links:    verification.NewLinkIssuer(jwtManager, cfg.FrontendURL),
		Mailer:   mail.NewSender(cfg.SMTP, log.With().Str("component", "mail").Logger()),
		Events:   recorder,
	}, service.AuthConfig{
		Mode:                  mode,
		AutoVerifyProvisioned: cfg.AutoVerifyProvisioned,
		ResendCooldown:        cfg.ResendCooldown,
	})

	handler, err := internalhttp.NewRouter(internalhttp.Deps{
		Config:     cfg,
		Auth:       authService,
		Users:      service.NewUserService(queries),
		Catalog:    catalog.NewService(catalog.NewRepository(pool)),
		Reports:    inspection.NewService(inspection.NewRepository(pool)),
		Payments:   billing.NewService(billing.NewRepository(pool)),
		Exports:    export.NewService(export.NewRepository(pool), uploader),
		Ceremonies: sessions,
		Metrics:    recorder,
		Checks: map[string]internalhttp.Check{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("verification_mode", string(mode)).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// links de verificação disparados por cadastros recentes
	if err := authService.Drain(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("e-mails pendentes descartados no desligamento")
	}
	return nil
}
