package domain

import (
	"time"
)

type RateLimitResult struct {
	Allow      bool
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration

	// FailedOpen marks a decision made while the store was unreachable.
	FailedOpen bool
}
