// Package ratelimit paces outbound provider calls.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	StrategyFixed       = "fixed"
	StrategyTokenBucket = "token_bucket"
	StrategyNone        = "none"
)

// Limiter blocks until the next provider call may proceed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// New builds a limiter for a configured strategy.
func New(strategy string, delay time.Duration) (Limiter, error) {
	switch strategy {
	case "", StrategyFixed:
		return NewFixedDelay(delay), nil
	case StrategyTokenBucket:
		if delay <= 0 {
			return Unlimited{}, nil
		}
		return NewTokenBucket(delay, 1), nil
	case StrategyNone:
		return Unlimited{}, nil
	default:
		return nil, fmt.Errorf("unknown rate limit strategy %q", strategy)
	}
}

// FixedDelay pauses for Delay before every call, regardless of how the
// previous call ended.
type FixedDelay struct {
	Delay time.Duration
}

// NewFixedDelay creates a FixedDelay limiter.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{Delay: delay}
}

func (f *FixedDelay) Wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Unlimited never blocks. Used where a human paces the calls.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

// TokenBucket releases one token per interval, holding at most burst.
type TokenBucket struct {
	tokens chan struct{}
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewTokenBucket creates a started token bucket. Call Stop to release its ticker.
func NewTokenBucket(interval time.Duration, burst int) *TokenBucket {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	tb := &TokenBucket{
		tokens: make(chan struct{}, burst),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		tb.tokens <- struct{}{}
	}
	go func() {
		for {
			select {
			case <-tb.done:
				return
			case <-tb.ticker.C:
				select {
				case tb.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()
	return tb
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tb.tokens:
		return nil
	}
}

// Stop halts token refills.
func (tb *TokenBucket) Stop() {
	tb.once.Do(func() {
		tb.ticker.Stop()
		close(tb.done)
	})
}
