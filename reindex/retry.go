package reindex

import (
	"context"
	"log/slog"
	"time"
)

// Retry runs op up to attempts times, doubling the wait after each failure
// starting from baseDelay. It returns the last error, or the context error if
// ctx ends first.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	if attempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = op(ctx); lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		slog.Debug("operation failed", "attempt", attempt, "attempts", attempts, "err", lastErr)

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(baseDelay << (attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
