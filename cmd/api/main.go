package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njprem/fitcity-password-reset/internal/config"
	"github.com/njprem/fitcity-password-reset/internal/logging"
	"github.com/njprem/fitcity-password-reset/internal/repository/ports"
	"github.com/njprem/fitcity-password-reset/internal/repository/postgres"
	redisrepo "github.com/njprem/fitcity-password-reset/internal/repository/redis"
	"github.com/njprem/fitcity-password-reset/internal/service"
	transport "github.com/njprem/fitcity-password-reset/internal/transport/http"
	"github.com/njprem/fitcity-password-reset/internal/transport/mail"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, closeLogs, err := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		LogstashAddr: cfg.LogstashTCPAddr,
	})
	if err != nil {
		slog.Error("init logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		_ = closeLogs()
		os.Exit(1)
	}
	_ = closeLogs()
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	var resets ports.PasswordResetRepository
	switch cfg.ResetTokenBackend {
	case "redis":
		rdb, err := redisrepo.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		resets = redisrepo.NewPasswordResetRepo(rdb, cfg.RedisPrefix)
	case "postgres", "":
		resets = postgres.NewPasswordResetRepo(db)
	default:
		return fmt.Errorf("unknown RESET_TOKEN_BACKEND %q", cfg.ResetTokenBackend)
	}

	sender, err := newResetSender(ctx, cfg, logger)
	if err != nil {
		return err
	}

	resetService := service.NewPasswordResetService(
		postgres.NewUserRepo(db),
		resets,
		sender,
		logger,
		service.PasswordResetConfig{
			TTL:           cfg.PasswordResetTTL,
			MaxActive:     cfg.PasswordResetMaxActive,
			HashCost:      cfg.PasswordHashCost,
			StoreTimeout:  cfg.StoreTimeout,
			NotifyTimeout: cfg.NotifyTimeout,
		},
	)

	e := transport.NewRouter(cfg.AllowOrigins, logger)
	transport.RegisterPasswordReset(e, resetService, cfg.RegisterRedirectPath, logger)
	transport.RegisterPages(e)
	transport.RegisterSwagger(e, "docs/swagger.yaml")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "reset_backend", cfg.ResetTokenBackend, "mail_provider", cfg.MailProvider)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newResetSender(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.PasswordResetSender, error) {
	switch cfg.MailProvider {
	case "smtp", "":
		return mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom), nil
	case "ses":
		m, err := mail.NewSESMailer(ctx, cfg.SESRegion, cfg.SESAccessKeyID, cfg.SESSecretAccessKey, cfg.SESFrom)
		if err != nil {
			return nil, fmt.Errorf("init ses mailer: %w", err)
		}
		return m, nil
	case "none":
		return mail.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}
