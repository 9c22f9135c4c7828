package httpclient

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AttemptFunc performs one attempt. attempt starts at 1.
type AttemptFunc func(ctx context.Context, attempt int) error

// Retrier runs an operation up to a fixed number of times with a constant pause between attempts.
type Retrier struct {
	logger zerolog.Logger
}

// NewRetrier creates a new retrier
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		logger: logger.With().Str("component", "Retrier").Logger(),
	}
}

// Do calls fn until it succeeds or maxAttempts is reached. The pause between attempts
// ends early when ctx is cancelled. It returns the number of attempts made and the last error.
func (r *Retrier) Do(ctx context.Context, url string, maxAttempts int, delay time.Duration, fn AttemptFunc) (int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempts, lastErr
		}

		attempts = attempt
		err := fn(ctx, attempt)
		if err == nil {
			return attempts, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		r.logger.Warn().
			Str("url", url).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Err(err).
			Msg("Attempt failed, retrying")

		if !r.wait(ctx, delay) {
			return attempts, lastErr
		}
	}

	return attempts, lastErr
}

func (r *Retrier) wait(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
