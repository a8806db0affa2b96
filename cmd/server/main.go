package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"expense_tracker/internal/app/di"
	"expense_tracker/internal/app/router"
	authadapters "expense_tracker/internal/feature/auth/adapters"
	authhandler "expense_tracker/internal/feature/auth/transport/handler"
	authusecase "expense_tracker/internal/feature/auth/usecase"
	cleanupadapters "expense_tracker/internal/feature/cleanup/adapters"
	cleanuphandler "expense_tracker/internal/feature/cleanup/transport/handler"
	cleanupusecase "expense_tracker/internal/feature/cleanup/usecase"
	"expense_tracker/internal/platform/config"
	platformdb "expense_tracker/internal/platform/db"
	platformhttp "expense_tracker/internal/platform/http"
	platformhandler "expense_tracker/internal/platform/http/handler"
	jwtmw "expense_tracker/internal/platform/jwt"
	"expense_tracker/internal/platform/oauth"
	infraredis "expense_tracker/internal/platform/redis"
	"expense_tracker/internal/shared/ratelimiter"
)

const (
	dbConnectTimeout = 30 * time.Second
	shutdownTimeout  = 10 * time.Second
	oauthHTTPTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(platformdb.Config{
		URL:            cfg.DatabaseURL,
		SQLitePath:     cfg.SQLitePath,
		ConnectTimeout: dbConnectTimeout,
	})
	if err != nil {
		return err
	}
	if cfg.RunMigrations {
		if err := platformdb.Migrate(db, di.Models()...); err != nil {
			return err
		}
	}

	// Redis is optional: sessions and stats fall back to the database without it.
	var rdb *redisv9.Client
	if cfg.RedisHost != "" {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword); err != nil {
			slog.Warn("Redis unavailable. Running without it.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	mailer, closeMailer, err := di.NewMailer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeMailer(); err != nil {
			slog.Error("failed to close mail transport", "error", err)
		}
	}()

	verifier, err := oauth.NewGoogleVerifier(ctx, cfg.GoogleClientID, platformhttp.NewHTTPClient(oauthHTTPTimeout))
	if err != nil {
		return err
	}
	if cfg.GoogleClientID == "" {
		slog.Warn("GOOGLE_CLIENT_ID is not set; Google sign-in is disabled")
	}

	// Repository
	tx := platformdb.NewTxManager(db)
	users := authadapters.NewUserPostgres(db)
	pending := authadapters.NewPendingUserPostgres(db)
	codes := authadapters.NewVerificationPostgres(db)
	resetTokens := authadapters.NewResetTokenPostgres(db)
	sessions := di.NewSessionRepository(rdb, db)
	stats := di.NewStatsRepository(db, rdb, cfg.StatsCacheTTL)

	// Usecase
	jwtGen := jwtmw.NewGenerator(cfg.JWTSecret, cfg.AccessTokenTTL)
	policy := authusecase.Policy{
		OTPTTL:            cfg.OTPTTL,
		OTPMaxAttempts:    cfg.OTPMaxAttempts,
		OTPResendCooldown: cfg.OTPResendCooldown,
		PendingUserTTL:    cfg.PendingUserTTL,
		ResetTokenTTL:     cfg.ResetTokenTTL,
		MailTimeout:       cfg.MailTimeout,
		FrontendURL:       cfg.FrontendURL,
	}
	issuer := authusecase.NewSessionIssuer(sessions, users, jwtGen, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.MaxSessionsPerUser)
	registrationUC := authusecase.NewRegistrationUsecase(tx, users, pending, codes, mailer, issuer, policy)
	authUC := authusecase.NewAuthUsecase(users, issuer)
	resetUC := authusecase.NewPasswordResetUsecase(tx, users, resetTokens, mailer, issuer, policy)
	oauthUC := authusecase.NewOAuthUsecase(tx, users, pending, verifier, issuer)
	cleanupUC := cleanupusecase.NewCleanupUsecase(cleanupadapters.NewCleanupPostgres(db), sessions, stats, cleanupusecase.Config{
		PendingUserTTL:     cfg.PendingUserTTL,
		RateLimitRetention: cfg.RateLimitLogRetention,
		Interval:           cfg.CleanupInterval,
		RetryInterval:      cfg.CleanupRetryInterval,
	})

	// Handler
	r := router.NewRouter(router.Deps{
		Auth:         authhandler.NewAuthHandler(registrationUC, authUC, resetUC, oauthUC),
		Cleanup:      cleanuphandler.NewCleanupHandler(cleanupUC),
		Limiter:      ratelimiter.NewLimiter(ratelimiter.NewGormStore(db)),
		RateLimits:   cfg.RateLimits,
		Tokens:       jwtGen,
		HealthChecks: healthChecks(db, rdb),
		FrontendURL:  cfg.FrontendURL,
	})

	go cleanupUC.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthChecks(db *gorm.DB, rdb *redisv9.Client) map[string]platformhandler.Check {
	checks := map[string]platformhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
