package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accounts/internal/config"
	"accounts/internal/jwtsigner"
	"accounts/internal/mail"
	"accounts/internal/observability/logging"
	"accounts/internal/observability/metrics"
	"accounts/internal/service"
	impl "accounts/internal/service/impl"
	"accounts/internal/store"
	httpx "accounts/internal/transport/http"
	"accounts/pkg/db"

	"gorm.io/gorm"
)

const serviceName = "accounts"

func main() {
	cfg, err := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister(nil, serviceName)

	// 1) DB
	gdb, err := openDB(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		return err
	}
	st := store.New(gdb)

	// 2) Services
	tokens, jwks, err := newTokenService(cfg)
	if err != nil {
		return err
	}
	var mailer service.EmailService = mail.LogMailer{Logger: logger}
	if cfg.MailEnabled() {
		mailer, err = mail.NewMailgunMailer(mail.MailgunConfig{
			APIKey:  cfg.MailgunAPIKey,
			Domain:  cfg.MailgunDomain,
			From:    cfg.MailgunFrom,
			BaseURL: cfg.MailgunBaseURL,
		})
		if err != nil {
			return err
		}
	}

	accounts := impl.NewAccountServiceImpl(st, impl.NewPasswordServiceArgon2id(), tokens, mailer)
	accounts.NotifyTimeout = cfg.NotifyTimeout

	// 3) HTTP
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpx.NewRouter(httpx.Deps{
			Accounts:    accounts,
			Tokens:      tokens,
			JWKS:        jwks,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("accounts service listening", "addr", srv.Addr, "issuer", cfg.Issuer, "alg", cfg.SigningAlg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	// let already-committed accounts get their verification email
	accounts.Wait()

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	dbCfg := db.Config{
		DSN:          cfg.DatabaseURL,
		LogSQL:       cfg.DBLogSQL,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}
	if cfg.UseSQLite() {
		return db.OpenSQLite(dbCfg)
	}
	return db.OpenGorm(dbCfg)
}

func newTokenService(cfg config.Config) (service.TokenService, func() map[string]any, error) {
	if cfg.SigningAlg == config.AlgEdDSA {
		signer, err := jwtsigner.NewFromBase64(cfg.Ed25519PrivateKey, cfg.SigningKeyID, cfg.Issuer, cfg.Audience, cfg.AccessTTL)
		if err != nil {
			return nil, nil, err
		}
		return signer, signer.PublicJWK, nil
	}
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	return ts, nil, err
}
