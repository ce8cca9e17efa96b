// Package ratelimit implements a fixed-window request counter persisted in
// PostgreSQL.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/yashng7/zero-grid/internal/shared"
)

// Config bounds the number of requests per key within one window.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Per-operation limits.
var (
	Default        = Config{MaxRequests: 100, Window: 15 * time.Minute}
	ForgotPassword = Config{MaxRequests: 3, Window: 15 * time.Minute}
	ResetPassword  = Config{MaxRequests: 5, Window: 15 * time.Minute}
)

// Result reports the outcome of a single check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Counter is the persisted state of one key.
type Counter struct {
	Count   int
	ResetAt time.Time
}

// Store persists counters.
type Store interface {
	// Get returns nil when no counter exists for key.
	Get(ctx context.Context, key string) (*Counter, error)
	// Reset starts a new window with a count of one.
	Reset(ctx context.Context, key string, resetAt time.Time) error
	// Increment adds one to the counter and returns the new count.
	Increment(ctx context.Context, key string) (int, error)
	// PurgeExpired deletes counters whose window ended before the cutoff.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Limiter applies fixed-window limits.
type Limiter struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New constructs a Limiter.
func New(store Store, logger *slog.Logger, opts ...Option) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Limiter{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check counts one request against key. Storage failures allow the request.
func (l *Limiter) Check(ctx context.Context, key string, cfg Config) Result {
	cfg = normalize(cfg)
	now := l.now()
	fallback := Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests, ResetAt: now.Add(cfg.Window)}

	counter, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Error("rate limit lookup failed", slog.String("key", key), slog.Any("error", err))
		return fallback
	}

	if counter == nil || !counter.ResetAt.After(now) {
		resetAt := now.Add(cfg.Window)
		if err := l.store.Reset(ctx, key, resetAt); err != nil {
			l.logger.Error("rate limit reset failed", slog.String("key", key), slog.Any("error", err))
			return fallback
		}
		return Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests - 1, ResetAt: resetAt}
	}

	if counter.Count >= cfg.MaxRequests {
		return Result{Allowed: false, Limit: cfg.MaxRequests, Remaining: 0, ResetAt: counter.ResetAt}
	}

	count, err := l.store.Increment(ctx, key)
	if err != nil {
		l.logger.Error("rate limit increment failed", slog.String("key", key), slog.Any("error", err))
		return fallback
	}
	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: cfg.MaxRequests, Remaining: remaining, ResetAt: counter.ResetAt}
}

// Enforce is Check that returns a rate-limit error when the request is denied.
func (l *Limiter) Enforce(ctx context.Context, key string, cfg Config) (Result, error) {
	res := l.Check(ctx, key, cfg)
	if !res.Allowed {
		return res, shared.RateLimited("Too many attempts. Try again later.")
	}
	return res, nil
}

// Purge removes counters whose window closed before the cutoff.
func (l *Limiter) Purge(ctx context.Context, before time.Time) (int64, error) {
	return l.store.PurgeExpired(ctx, before)
}

func normalize(cfg Config) Config {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = Default.MaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = Default.Window
	}
	return cfg
}
