package genai

import (
	"context"
	"time"
)

// WithTimeout races fn against the deadline. The losing call is abandoned,
// not cancelled: fn keeps running on its goroutine and its eventual result
// is discarded through the buffered channel. Callers must tolerate a
// straggling remote call completing after the wrapper has already failed.
func WithTimeout[T any](ctx context.Context, d time.Duration, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	type outcome struct {
		result T
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := fn(ctx)
		done <- outcome{result: result, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return zero, Classify(op, ctx.Err())
	case <-timer.C:
		return zero, NewError(KindTimeout, op, context.DeadlineExceeded)
	}
}
