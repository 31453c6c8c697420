package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryIf = func(error) bool { return true }

	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	cfg := fastConfig()
	permanent := errors.New("permanent")
	cfg.RetryIf = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryIf = func(error) bool { return true }

	last := errors.New("attempt 3")
	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier")
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
}

func TestDo_NoRetryWithoutRetryIf(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelStopsRetrying(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = 50 * time.Millisecond
	cfg.RetryIf = func(error) bool { return true }

	ctx, cancel := context.WithCancel(context.Background())
	boom := errors.New("boom")

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, cfg, func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestConfig_DelayGrowsAndCaps(t *testing.T) {
	cfg := Config{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     40 * time.Millisecond,
		Multiplier:   2.0,
	}

	assert.Equal(t, 10*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 20*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 40*time.Millisecond, cfg.Delay(3))
	assert.Equal(t, 40*time.Millisecond, cfg.Delay(10), "delay is capped at MaxDelay")
}

func TestConfig_DelayJitterStaysNearBase(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 50; i++ {
		d := cfg.Delay(1)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}
