package httpclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	calls := 0

	attempts, err := r.Do(context.Background(), "http://x", 3, time.Millisecond, func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	calls := 0
	last := errors.New("last")

	attempts, err := r.Do(context.Background(), "http://x", 2, 0, func(ctx context.Context, attempt int) error {
		calls++
		if attempt == 2 {
			return last
		}
		return errors.New("first")
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, calls)
}

func TestRetrier_FixedDelay(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	var stamps []time.Time

	_, _ = r.Do(context.Background(), "http://x", 3, 20*time.Millisecond, func(ctx context.Context, attempt int) error {
		stamps = append(stamps, time.Now())
		return errors.New("fail")
	})

	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 20*time.Millisecond)
}

func TestRetrier_CancelledDuringWait(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	start := time.Now()
	attempts, err := r.Do(ctx, "http://x", 5, time.Hour, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetrier_ZeroAttemptsMeansOne(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	calls := 0
	_, err := r.Do(context.Background(), "http://x", 0, 0, func(ctx context.Context, attempt int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
