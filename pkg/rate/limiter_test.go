package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNoLimiter(t *testing.T) {
	l := &NoLimiter{}
	for i := 0; i < 10000; i++ {
		require.NoError(t, l.Wait(context.Background(), ""))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, ""))
}

func TestLocalRateLimiter(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(2))

	for i := 0; i < 2; i++ {
		require.NoError(t, l.Wait(shortDeadline(t), "a"))
	}

	// The next token is half a second away
	assert.Error(t, l.Wait(shortDeadline(t), "a"))

	// Ensure key partitioning is valid
	for i := 0; i < 2; i++ {
		require.NoError(t, l.Wait(shortDeadline(t), "b"))
	}
	assert.Error(t, l.Wait(shortDeadline(t), "b"))
}

func TestLocalRateLimiter_FractionalRate(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(0.5))

	require.NoError(t, l.Wait(shortDeadline(t), "a"))
	assert.Error(t, l.Wait(shortDeadline(t), "a"))
}

func TestLocalRateLimiter_Wait(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(1))

	require.NoError(t, l.Wait(context.Background(), "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, "a"))
}

func shortDeadline(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}
