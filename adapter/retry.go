package adapter

import (
	"context"
	"fmt"
	"time"
)

// BaseBackoff is the wait before the first retry. Each later retry doubles it.
var BaseBackoff = 500 * time.Millisecond

// Backoff returns the wait before retry number i (1-based).
func Backoff(i int) time.Duration {
	if i < 1 {
		return 0
	}
	return time.Duration(1<<uint(i-1)) * BaseBackoff
}

// Retry calls attempt up to 1+retries times with exponential backoff
// between calls. A nil permanent treats every error as retriable; when
// permanent(err) is true Retry stops immediately. name prefixes errors.
func Retry(ctx context.Context, name string, retries int, attempt func(context.Context) error, permanent func(error) bool) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(Backoff(i)):
			}
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
