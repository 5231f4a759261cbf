package rate

import "errors"

// ErrRateLimited is returned by [Policy.Check] while the cooldown is active.
var ErrRateLimited = errors.New("rate limited")
