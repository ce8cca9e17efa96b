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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/yashng7/zero-grid/internal/app"
	"github.com/yashng7/zero-grid/internal/auth"
	"github.com/yashng7/zero-grid/internal/issues"
	"github.com/yashng7/zero-grid/internal/notify"
	"github.com/yashng7/zero-grid/internal/observability"
	"github.com/yashng7/zero-grid/internal/platform/cache"
	"github.com/yashng7/zero-grid/internal/platform/db"
	"github.com/yashng7/zero-grid/internal/ratelimit"
	"github.com/yashng7/zero-grid/internal/users"
	"github.com/yashng7/zero-grid/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, emails will fail to enqueue", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	notifier, err := notify.New(jobClient, cfg.AppURL, logger)
	if err != nil {
		logger.Error("init notifier", slog.Any("error", err))
		os.Exit(1)
	}

	limiter := ratelimit.New(ratelimit.NewPGStore(pool), logger)
	issuer := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessExpiry.Std(),
		RefreshTTL:    cfg.JWTRefreshExpiry.Std(),
	})

	userRepo := users.NewRepository(pool)
	authService := auth.NewService(auth.ServiceParams{
		Users:    userRepo,
		Tokens:   auth.NewResetTokenRepository(pool),
		Tx:       auth.NewTxRunner(pool),
		Issuer:   issuer,
		Notifier: notifier,
		Logger:   logger,
	})
	usersService := users.NewService(userRepo, notifier)
	issuesService := issues.NewService(issues.NewRepository(pool), userRepo, notifier)

	metrics := observability.NewMetrics()

	healthChecks := []app.HealthCheck{
		{Name: "database", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error {
			if redisClient == nil {
				return errors.New("redis not connected")
			}
			return cache.Ping(ctx, redisClient)
		}},
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    auth.NewHandler(logger, authService, limiter, cfg.IsProduction()),
		IssuesHandler:  issues.NewHandler(logger, issuesService, limiter),
		UsersHandler:   users.NewHandler(logger, usersService, limiter),
		JobHandler:     jobs.NewHandler(inspector, logger),
		AuthMiddleware: auth.RequireAuth(issuer, logger),
		HealthChecks:   healthChecks,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		notifier.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
