// Package ratelimit implements the sliding-window guard shared by every
// external lookup call site. Once the per-window budget is exceeded the
// limiter locks out all lookups for a fixed duration and releases itself
// when the lockout elapses, so callers never need to poll.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// Config holds the limiter tunables.
type Config struct {
	Window   time.Duration // length of the counting window
	MaxCalls int           // calls allowed per window
	Lockout  time.Duration // denial period after the budget is exceeded
}

// Limiter is a sliding-window call-count guard with a lockout. It is
// mutex-guarded so the check-and-consume contract also holds on a
// concurrent runtime.
type Limiter struct {
	mu  sync.Mutex
	cfg Config
	clk clock.Clock
	log *slog.Logger

	windowStart time.Time
	calls       int
	lockedUntil time.Time
	unlock      *clock.Timer
}

// New creates a limiter. A nil clock falls back to the wall clock.
func New(cfg Config, clk clock.Clock, log *slog.Logger) *Limiter {
	if clk == nil {
		clk = clock.New()
	}
	return &Limiter{
		cfg:         cfg,
		clk:         clk,
		log:         log,
		windowStart: clk.Now(),
	}
}

// Allow reports whether one external lookup may proceed, consuming one call
// from the current window when it does. Exceeding the window budget starts
// the lockout; during a lockout no counters are mutated.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clk.Now()

	if !l.lockedUntil.IsZero() {
		if now.Before(l.lockedUntil) {
			return false
		}
		// Lockout elapsed before the scheduled release ran.
		l.resetLocked(now)
	}

	if now.Sub(l.windowStart) > l.cfg.Window {
		l.calls = 0
		l.windowStart = now
	}

	if l.calls >= l.cfg.MaxCalls {
		l.lockedUntil = now.Add(l.cfg.Lockout)
		l.log.Warn("lookup budget exhausted, locking out",
			"max_calls", l.cfg.MaxCalls, "window", l.cfg.Window, "until", l.lockedUntil)
		l.unlock = l.clk.AfterFunc(l.cfg.Lockout, l.release)
		return false
	}

	l.calls++
	return true
}

// Limited reports whether a lockout is currently active.
func (l *Limiter) Limited() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.lockedUntil.IsZero() && l.clk.Now().Before(l.lockedUntil)
}

// LockedUntil returns the lockout deadline, or the zero time when the
// limiter is not locked.
func (l *Limiter) LockedUntil() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockedUntil
}

// Stop cancels the scheduled release. Intended for teardown.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unlock != nil {
		l.unlock.Stop()
		l.unlock = nil
	}
}

// release is the scheduled unlock: it clears the lockout and zeroes the
// counter so the next caller is allowed immediately.
func (l *Limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockedUntil.IsZero() {
		return
	}
	l.resetLocked(l.clk.Now())
	l.log.Info("lookup lockout released")
}

func (l *Limiter) resetLocked(now time.Time) {
	l.lockedUntil = time.Time{}
	l.calls = 0
	l.windowStart = now
	l.unlock = nil
}
