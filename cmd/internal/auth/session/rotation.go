package session

import "time"

// DefaultRotateAfter is the elapsed-lifetime fraction past which a refresh
// also rotates the refresh token.
const DefaultRotateAfter = 0.80

// Policy decides, from refresh-token age and lifetime, whether a refresh
// event must also rotate the refresh token. Pure; no side effects.
type Policy struct {
	// Threshold is the elapsed fraction at which rotation kicks in.
	// Zero means DefaultRotateAfter.
	Threshold float64
}

// ShouldRotate reports whether the elapsed fraction of the token's
// lifetime has reached the threshold.
func (p Policy) ShouldRotate(expiresAt, createdAt, now time.Time) bool {
	total := expiresAt.Sub(createdAt)
	if total <= 0 {
		return true
	}

	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultRotateAfter
	}

	elapsed := now.Sub(createdAt)
	return float64(elapsed)/float64(total) >= threshold
}
