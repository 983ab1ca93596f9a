package transfer

import (
	"fmt"
	"math/rand"
	"time"
)

// RetryWithExponentialBackoff executes a function with exponential backoff
// retries: 5 attempts, 500ms base delay doubling up to 30s, with ±20% jitter.
func RetryWithExponentialBackoff(operation string, fn func() error) error {
	return retryWithBackoff(operation, 5, 500*time.Millisecond, 30*time.Second, fn)
}

func retryWithBackoff(operation string, maxRetries int, baseRetryDelay, maxRetryDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if attempt < maxRetries {
			delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}

			// Add jitter (±20%)
			jitter := float64(delay) * (0.8 + rand.Float64()*0.4)
			delay = time.Duration(jitter)

			fmt.Printf("Retry %d/%d for %s after %v: %v\n",
				attempt, maxRetries, operation, delay, err)

			time.Sleep(delay)
		}
	}

	return fmt.Errorf("operation %s failed after %d attempts: %w",
		operation, maxRetries, err)
}
