package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  1.0,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetry(3), "text.generate", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "ok", nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetry_AuthFailsImmediately(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), "text.generate", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("401 unauthorized")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindAuth, classified.Kind)
}

func TestRetry_ParsingFailsImmediately(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), "text.generate", func(ctx context.Context) (string, error) {
		calls++
		return "", NewError(KindParsing, "text.generate", errors.New("bad payload"))
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), "image.generate", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindQuota, classified.Kind)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, fastRetry(3), "text.generate", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("network")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestRetry_ObserverSeesEveryAttempt(t *testing.T) {
	type observed struct {
		attempt int
		failed  bool
	}
	var seen []observed

	calls := 0
	_, err := Retry(context.Background(), fastRetry(2), "text.generate", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("timeout")
		}
		return "ok", nil
	}, func(op string, attempt int, err error) {
		assert.Equal(t, "text.generate", op)
		seen = append(seen, observed{attempt: attempt, failed: err != nil})
	})

	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, observed{attempt: 1, failed: true}, seen[0])
	assert.Equal(t, observed{attempt: 2, failed: false}, seen[1])
}

func TestRetryConfig_Defaults(t *testing.T) {
	cfg := RetryConfig{}.withDefaults()
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.InitialBackoff)
	assert.Equal(t, 2.0, cfg.BackoffFactor)

	assert.Equal(t, 3, DefaultRetryConfig().MaxAttempts)
	assert.Equal(t, 2, ExpensiveRetryConfig().MaxAttempts)
}
