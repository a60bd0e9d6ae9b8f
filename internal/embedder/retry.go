package embedder

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        MaxRetries,
		InitialBackoff:    InitialBackoffMs * time.Millisecond,
		MaxBackoff:        MaxBackoffMs * time.Millisecond,
		BackoffMultiplier: BackoffMultiplier,
	}
}

// retryWithBackoff executes fn with exponential backoff on failure.
// Respects context cancellation between attempts.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", config.MaxRetries+1, lastErr)
}
