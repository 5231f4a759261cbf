package rate

import "time"

// Policy holds the login throttle parameters.
type Policy struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// Blocked reports whether a login attempt at now must be refused.
func (p Policy) Blocked(attempts int, lastAttempt, now time.Time) bool {
	if p.MaxAttempts <= 0 || attempts < p.MaxAttempts || lastAttempt.IsZero() {
		return false
	}
	return now.Sub(lastAttempt) < p.Cooldown
}

// Lapsed reports whether the counter reached the threshold and the cooldown
// has since expired. Callers reset the counter before the next attempt.
func (p Policy) Lapsed(attempts int, lastAttempt, now time.Time) bool {
	if p.MaxAttempts <= 0 || attempts < p.MaxAttempts {
		return false
	}
	return !p.Blocked(attempts, lastAttempt, now)
}

// RetryAfter returns how long until the cooldown lapses, or zero when not
// blocked.
func (p Policy) RetryAfter(attempts int, lastAttempt, now time.Time) time.Duration {
	if !p.Blocked(attempts, lastAttempt, now) {
		return 0
	}
	return p.Cooldown - now.Sub(lastAttempt)
}

// Check returns ErrRateLimited when Blocked.
func (p Policy) Check(attempts int, lastAttempt, now time.Time) error {
	if p.Blocked(attempts, lastAttempt, now) {
		return ErrRateLimited
	}
	return nil
}
