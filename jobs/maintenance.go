package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/yashng7/zero-grid/internal/jobs"
)

// ResetTokenPurger removes expired password reset tokens.
type ResetTokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// RateLimitPurger removes rate-limit windows that reset before the cutoff.
type RateLimitPurger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// MaintenanceJob runs the scheduled database sweeps.
type MaintenanceJob struct {
	Tokens     ResetTokenPurger
	RateLimits RateLimitPurger
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewMaintenanceJob wires dependencies for the maintenance handlers.
func NewMaintenanceJob(tokens ResetTokenPurger, rateLimits RateLimitPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *MaintenanceJob {
	return &MaintenanceJob{
		Tokens:     tokens,
		RateLimits: rateLimits,
		Logger:     logger,
		Metrics:    metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandlePurgeResetTokens processes TaskPurgeResetTokens.
func (j *MaintenanceJob) HandlePurgeResetTokens(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Tokens == nil {
		return errors.New("purge reset tokens: handler not configured")
	}
	tracker := metricsOrDefault(j.Metrics).Track(TaskPurgeResetTokens)
	removed, err := j.Tokens.PurgeExpiredTokens(ctx)
	if err != nil {
		loggerOrDefault(j.Logger).Error("purge reset tokens", slog.Any("error", err))
		return tracker.End(err)
	}
	loggerOrDefault(j.Logger).Info("purged reset tokens", slog.Int64("removed", removed))
	return tracker.End(nil)
}

// HandlePurgeRateLimits processes TaskPurgeRateLimits.
func (j *MaintenanceJob) HandlePurgeRateLimits(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.RateLimits == nil {
		return errors.New("purge rate limits: handler not configured")
	}
	var payload PurgeRateLimitsPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.GraceMinutes < 0 {
		payload.GraceMinutes = 0
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskPurgeRateLimits)
	cutoff := j.now().Add(-time.Duration(payload.GraceMinutes) * time.Minute)
	removed, err := j.RateLimits.Purge(ctx, cutoff)
	if err != nil {
		loggerOrDefault(j.Logger).Error("purge rate limits", slog.Any("error", err))
		return tracker.End(err)
	}
	loggerOrDefault(j.Logger).Info("purged rate limits", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	return tracker.End(nil)
}

func (j *MaintenanceJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}
