package genai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout_FastCallSucceeds(t *testing.T) {
	result, err := WithTimeout(context.Background(), time.Second, "text.generate", func(ctx context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestWithTimeout_SlowCallAbandoned(t *testing.T) {
	started := make(chan struct{})
	_, err := WithTimeout(context.Background(), 10*time.Millisecond, "image.generate", func(ctx context.Context) (int, error) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		return 42, nil
	})

	<-started
	require.Error(t, err)

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindTimeout, classified.Kind)
	assert.Equal(t, "image.generate", classified.Op)
}

func TestWithTimeout_ContextCancellationWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, time.Second, "text.generate", func(ctx context.Context) (int, error) {
		time.Sleep(100 * time.Millisecond)
		return 0, nil
	})

	require.Error(t, err)
}
