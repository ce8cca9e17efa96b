package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/yashng7/zero-grid/cmd/worker/cli"
	"github.com/yashng7/zero-grid/internal/app"
	"github.com/yashng7/zero-grid/internal/auth"
	jobmetrics "github.com/yashng7/zero-grid/internal/jobs"
	"github.com/yashng7/zero-grid/internal/mail"
	"github.com/yashng7/zero-grid/internal/observability"
	"github.com/yashng7/zero-grid/internal/platform/db"
	"github.com/yashng7/zero-grid/internal/ratelimit"
	"github.com/yashng7/zero-grid/internal/users"
	"github.com/yashng7/zero-grid/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	if len(os.Args) > 1 {
		if err := runCommand(ctx, redisOpts, os.Args[1:]); err != nil {
			logger.Error("worker command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	pool, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	sender, err := mail.New(cfg.MailProvider, cfg.MailAPIKey, mail.From{Address: cfg.MailFrom, Name: cfg.MailFromName}, logger)
	if err != nil {
		logger.Error("init mail sender", slog.Any("error", err))
		os.Exit(1)
	}

	obs := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(obs.Registerer())
	authService := auth.NewService(auth.ServiceParams{
		Users:  users.NewRepository(pool),
		Tokens: auth.NewResetTokenRepository(pool),
		Tx:     auth.NewTxRunner(pool),
		Logger: logger,
	})
	limiter := ratelimit.New(ratelimit.NewPGStore(pool), logger)

	mailJob := jobs.NewMailJob(sender, logger, metrics)
	maintenance := jobs.NewMaintenanceJob(authService, limiter, logger, metrics)

	rateLimitTask, err := jobs.NewPurgeRateLimitsTask(60)
	if err != nil {
		logger.Error("build rate limit purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskPurgeResetTokens, Handler: maintenance.HandlePurgeResetTokens},
			{Type: jobs.TaskPurgeRateLimits, Handler: maintenance.HandlePurgeRateLimits},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "5 * * * *", Task: jobs.NewPurgeResetTokensTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "35 * * * *", Task: rateLimitTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveMetrics(gctx, newMetricsServer(cfg.WorkerMetricsAddr, obs), logger)
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

// runCommand handles "trigger <task>" and "stats".
func runCommand(ctx context.Context, redisOpts asynq.RedisClientOpt, args []string) error {
	client := asynq.NewClient(redisOpts)
	defer client.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()
	jobsCLI := cli.NewJobsCLI(client, inspector)

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: worker trigger <%s|%s>", jobs.TaskPurgeResetTokens, jobs.TaskPurgeRateLimits)
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return nil
	case "stats":
		stats, err := jobsCLI.InspectQueue()
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
