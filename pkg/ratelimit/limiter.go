// pkg/ratelimit/limiter.go
// Token bucket rate limiter for bounding connect attempts per second

package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps golang.org/x/time/rate with request accounting.
type Limiter struct {
	limiter *rate.Limiter

	mu    sync.Mutex
	stats Stats
}

// Stats contains limiter counters.
type Stats struct {
	TotalWaits  int64
	FailedWaits int64
	CurrentRate float64
}

// New creates a limiter allowing rps requests per second with a burst of the
// same size. A non-positive rps means unlimited.
func New(rps int) *Limiter {
	r := rate.Limit(rps)
	burst := rps
	if r <= 0 {
		r = rate.Inf
		burst = 0
	}
	return &Limiter{limiter: rate.NewLimiter(r, burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)

	l.mu.Lock()
	l.stats.TotalWaits++
	if err != nil {
		l.stats.FailedWaits++
	}
	l.mu.Unlock()

	return err
}

// SetRate updates the rate limit dynamically. Non-positive means unlimited.
func (l *Limiter) SetRate(rps int) {
	r := rate.Limit(rps)
	if r <= 0 {
		r = rate.Inf
	}
	l.limiter.SetLimit(r)
	if r != rate.Inf {
		l.limiter.SetBurst(rps)
	}

	l.mu.Lock()
	l.stats.CurrentRate = float64(r)
	l.mu.Unlock()
}

// Rate returns the current limit in requests per second.
func (l *Limiter) Rate() float64 {
	return float64(l.limiter.Limit())
}

// GetStats returns a copy of the counters.
func (l *Limiter) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
