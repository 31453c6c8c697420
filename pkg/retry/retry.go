// Package retry provides retry with exponential backoff and jitter for
// transient transport failures against the EduBase API.
// No external dependencies - uses only standard library.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay grows per attempt.
	Multiplier float64

	// JitterFactor adds randomness to delays (0.0 = none, 1.0 = full jitter).
	JitterFactor float64

	// RetryIf decides whether an error is worth another attempt.
	// If nil, nothing is retried.
	RetryIf func(error) bool

	// OnRetry is called before each retry attempt, for logging or metrics.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// Delay computes the backoff delay for the given attempt (1-based).
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	if max := float64(c.MaxDelay); c.MaxDelay > 0 && delay > max {
		delay = max
	}

	if c.JitterFactor > 0 {
		jitter := delay * c.JitterFactor
		delay = delay - jitter/2 + rand.Float64()*jitter
	}

	return time.Duration(delay)
}

// Do executes the operation, retrying per the config. The last error is
// returned unwrapped so callers can still classify it.
func Do(ctx context.Context, cfg Config, operation func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := cfg.Delay(attempt - 1)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, lastErr, delay)
			}
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(delay):
			}
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.RetryIf == nil || !cfg.RetryIf(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
