package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelay_WaitsEveryCall(t *testing.T) {
	l := NewFixedDelay(20 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestFixedDelay_Cancelled(t *testing.T) {
	l := NewFixedDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestFixedDelay_ZeroDelay(t *testing.T) {
	assert.NoError(t, NewFixedDelay(0).Wait(context.Background()))
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(30*time.Millisecond, 1)
	defer tb.Stop()

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)

	tb.Stop()
	tb.Stop()
}

func TestNew(t *testing.T) {
	l, err := New("", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, l.(*FixedDelay).Delay)

	l, err = New(StrategyTokenBucket, time.Second)
	require.NoError(t, err)
	l.(*TokenBucket).Stop()

	l, err = New(StrategyTokenBucket, 0)
	require.NoError(t, err)
	assert.IsType(t, Unlimited{}, l)

	l, err = New(StrategyNone, time.Second)
	require.NoError(t, err)
	assert.IsType(t, Unlimited{}, l)

	_, err = New("exponential", time.Second)
	assert.Error(t, err)
}

func TestUnlimited(t *testing.T) {
	assert.NoError(t, Unlimited{}.Wait(context.Background()))
}
