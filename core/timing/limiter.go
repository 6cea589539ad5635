package timing

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds how often handshakes may be generated for a single
// domain. A burst of identical ClientHellos in a short window is itself
// a fingerprint, so the domain registry attaches one of these to every
// registered domain.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows handshakesPerSec sustained handshakes with the
// given burst. Non-positive arguments disable limiting.
func NewLimiter(handshakesPerSec float64, burst int) *Limiter {
	if handshakesPerSec <= 0 || burst <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(handshakesPerSec), burst)}
}

// Allow reports whether a handshake may start now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a handshake may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
