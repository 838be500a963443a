package llm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientWithRateLimitIsCloser(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 10

	client, err := NewClient(cfg)
	require.NoError(t, err)

	closer, ok := client.(io.Closer)
	require.True(t, ok, "rate limited client must expose Close to stop the refill goroutine")
	require.NoError(t, closer.Close())
}

func TestNewClientWithoutRateLimit(t *testing.T) {
	client, err := NewClient(DefaultConfig())
	require.NoError(t, err)

	_, ok := client.(io.Closer)
	assert.False(t, ok, "unlimited client holds no background resources")
}

func TestRateLimiterAcquireAndClose(t *testing.T) {
	rl := newRateLimiter(5)
	defer rl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, rl.wait(ctx), "token %d should be available immediately", i)
	}
	assert.False(t, rl.tryAcquire(), "bucket should be drained")
}

func TestRateLimiterWaitCanceled(t *testing.T) {
	rl := newRateLimiter(1)
	defer rl.Close()

	require.True(t, rl.tryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
