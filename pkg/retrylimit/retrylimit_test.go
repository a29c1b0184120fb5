package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	errBusy  = errors.New("busy")
	errFatal = errors.New("fatal")
)

func classify(err error) Decision {
	switch {
	case errors.Is(err, errBusy):
		return Throttle
	case errors.Is(err, errFatal):
		return Stop
	}
	return Retry
}

func fastConfig() Config {
	return Config{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Classify: classify}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoStopsOnFatal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return errFatal
	})
	require.ErrorIs(t, err, errFatal)
	require.Equal(t, 1, calls)
}

func TestDoExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func(context.Context) error {
		calls++
		return errors.New("flaky")
	})
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 4, calls)
}

func TestDoThrottles(t *testing.T) {
	lim := NewAdaptiveLimiter(100, 1, 100)
	calls := 0
	err := Do(context.Background(), lim, fastConfig(), func(context.Context) error {
		calls++
		if calls == 1 {
			return errBusy
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, lim.Limit())
}

func TestDoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, NewAdaptiveLimiter(1, 1, 1), fastConfig(), func(context.Context) error {
		t.Fatal("fn called with canceled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	now := time.Unix(0, 0)
	lim := NewAdaptiveLimiter(50, 2, 8)
	lim.now = func() time.Time { return now }
	require.Equal(t, 8.0, lim.Limit())

	for range 5 {
		lim.Throttle()
	}
	require.Equal(t, 2.0, lim.Limit())

	lim.Success()
	require.Equal(t, 2.0, lim.Limit(), "still cooling down")

	now = now.Add(time.Minute)
	lim.Success()
	require.Equal(t, 3.0, lim.Limit())
}
