package auth

import (
	"time"

	"golang.org/x/time/rate"
)

// attemptLimiter throttles code submissions: a burst of maxAttempts is
// available immediately, then one more attempt per cooldown interval.
type attemptLimiter struct {
	maxAttempts int
	cooldown    time.Duration
	lim         *rate.Limiter
}

func newAttemptLimiter(maxAttempts int, cooldown time.Duration) *attemptLimiter {
	return &attemptLimiter{
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		lim:         rate.NewLimiter(rate.Every(cooldown), maxAttempts),
	}
}

func (l *attemptLimiter) allow() bool {
	return l.lim.Allow()
}

// reset restores the full burst, used when a fresh challenge is issued.
func (l *attemptLimiter) reset() {
	l.lim = rate.NewLimiter(rate.Every(l.cooldown), l.maxAttempts)
}
