package genai

import (
	"context"
	"time"
)

// RetryConfig controls bounded exponential backoff around a remote call.
type RetryConfig struct {
	// MaxAttempts includes the initial attempt.
	MaxAttempts int
	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration
	// BackoffFactor multiplies the wait after every failed attempt.
	BackoffFactor float64
}

// DefaultRetryConfig is the budget for text generation: 3 attempts,
// 1s initial wait, doubling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		BackoffFactor:  2.0,
	}
}

// ExpensiveRetryConfig is the budget for image generation and trend
// discovery. These calls are costly, so only one retry.
func ExpensiveRetryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = 2
	return cfg
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 2.0
	}
	return c
}

// AttemptObserver is notified after every attempt. err is nil on success.
// Used for structured progress logging and metrics; it must not block.
type AttemptObserver func(op string, attempt int, err error)

// Retry executes fn with the configured backoff, short-circuiting on
// terminal error kinds (Auth, Parsing) and context cancellation. The
// returned error is always a classified *Error.
func Retry[T any](ctx context.Context, cfg RetryConfig, op string, fn func(ctx context.Context) (T, error), observe AttemptObserver) (T, error) {
	var zero T
	cfg = cfg.withDefaults()

	backoff := cfg.InitialBackoff
	var last *Error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, Classify(op, err)
		}

		result, err := fn(ctx)
		if observe != nil {
			observe(op, attempt, err)
		}
		if err == nil {
			return result, nil
		}

		last = Classify(op, err)
		if !last.Retryable() {
			return zero, last
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, Classify(op, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
	}

	return zero, last
}
