package tool

import (
	"context"
	"time"
)

const (
	maxSearchAttempts = 3
	baseRetryDelay    = 2 * time.Second
)

// backoffDelay returns base * 2^attempt for a 0-indexed attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << uint(attempt)
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
