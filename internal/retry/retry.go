// Package retry runs an operation with bounded exponential backoff. Only
// errors accepted by the retry predicate are retried; everything else is
// returned after the first attempt.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/config"
)

type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
}

func DefaultPolicy() Policy {
	return Policy{Attempts: 3, InitialDelay: 5 * time.Second, Multiplier: 2}
}

func PolicyFromConfig(cfg config.RetryConfig) Policy {
	return Policy{Attempts: cfg.Attempts, InitialDelay: cfg.InitialDelay, Multiplier: cfg.Multiplier}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}
	return time.Duration(d)
}

type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Option func(*Retrier)

// WithSleep replaces the wait function; tests use it to record delays.
func WithSleep(fn SleepFunc) Option {
	return func(r *Retrier) { r.sleep = fn }
}

func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) { r.retryable = fn }
}

type Retrier struct {
	policy    Policy
	sleep     SleepFunc
	retryable func(error) bool
}

// New builds a Retrier that by default retries engine rate-limit errors.
func New(p Policy, opts ...Option) *Retrier {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	r := &Retrier{
		policy: p,
		sleep:  Sleep,
		retryable: func(err error) bool {
			return apperr.Is(err, apperr.KindEngineRateLimited)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrier) Policy() Policy { return r.policy }

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The last error stays in the returned chain.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !r.retryable(err) {
			return err
		}
		lastErr = err
		if attempt == r.policy.Attempts {
			break
		}

		delay := r.policy.Delay(attempt)
		slog.Warn("retrying after rate limit",
			"op", op,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err,
		)
		if err := r.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %d attempts exhausted: %w", op, r.policy.Attempts, lastErr)
}
