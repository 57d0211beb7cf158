// Package ratelimit throttles outbound analyzer API calls so a scan with
// many tools does not exhaust a provider quota mid-run.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Config holds limiter settings.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or negative disables
	// limiting entirely.
	RequestsPerSecond float64
	// Burst is the number of calls that may proceed immediately.
	Burst int
}

// DefaultConfig allows 5 analyzer calls per second with a burst of 10,
// which stays under typical LLM provider per-minute limits.
func DefaultConfig() Config {
	return Config{RequestsPerSecond: 5, Burst: 10}
}

// Limiter gates analyzer API calls. The zero value is unusable; construct
// with New. A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter from cfg. A non-positive rate returns a nil
// Limiter, which Wait treats as unlimited.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

// Wait blocks until a call may proceed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now without waiting.
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}
