package utils

import (
	"context"
	"time"
)

// Retry runs fn once and retries it up to maxRetries more times while
// retryable reports the returned error as worth another attempt. The delay
// before retry n is base<<(n-1), so base=1s gives 1s, 2s, 4s, ...
func Retry(ctx context.Context, maxRetries int, base time.Duration, retryable func(error) bool, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return err
		}
		delay := base << uint(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
