package ratelimit_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/ratelimit"
	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() ratelimit.Config {
	return ratelimit.Config{
		Window:   time.Minute,
		MaxCalls: 10,
		Lockout:  5 * time.Minute,
	}
}

func TestLimiter_EleventhCallLimited(t *testing.T) {
	clk := clock.NewMock()
	limiter := ratelimit.New(defaultConfig(), clk, slog.Default())

	for i := range 10 {
		require.True(t, limiter.Allow(), "call %d should be allowed", i+1)
	}

	assert.False(t, limiter.Allow(), "11th call within the window must be limited")
	assert.True(t, limiter.Limited())
	assert.Equal(t, clk.Now().Add(5*time.Minute), limiter.LockedUntil())
}

func TestLimiter_LockoutPersists(t *testing.T) {
	clk := clock.NewMock()
	limiter := ratelimit.New(defaultConfig(), clk, slog.Default())

	for range 10 {
		limiter.Allow()
	}
	require.False(t, limiter.Allow())

	clk.Add(4 * time.Minute)
	assert.False(t, limiter.Allow(), "still locked before the lockout elapses")
}

func TestLimiter_ScheduledReleaseResetsCounter(t *testing.T) {
	clk := clock.NewMock()
	limiter := ratelimit.New(defaultConfig(), clk, slog.Default())

	for range 10 {
		limiter.Allow()
	}
	require.False(t, limiter.Allow())

	// The scheduled release fires without anybody polling.
	clk.Add(5 * time.Minute)
	assert.False(t, limiter.Limited())

	for i := range 10 {
		assert.True(t, limiter.Allow(), "call %d after release should be allowed", i+1)
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	clk := clock.NewMock()
	limiter := ratelimit.New(defaultConfig(), clk, slog.Default())

	for range 10 {
		require.True(t, limiter.Allow())
	}

	// A fresh window restores the budget without ever entering lockout.
	clk.Add(61 * time.Second)
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Limited())
}

func TestLimiter_LockoutDoesNotMutateCounters(t *testing.T) {
	clk := clock.NewMock()
	limiter := ratelimit.New(defaultConfig(), clk, slog.Default())

	for range 10 {
		limiter.Allow()
	}
	require.False(t, limiter.Allow())
	lockedUntil := limiter.LockedUntil()

	// Repeated denied calls must not extend the lockout.
	clk.Add(time.Minute)
	require.False(t, limiter.Allow())
	assert.Equal(t, lockedUntil, limiter.LockedUntil())
}
