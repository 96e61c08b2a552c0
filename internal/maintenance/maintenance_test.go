package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("tickers drive their tasks", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var refreshes, cleanups atomic.Int64
		cfg := Config{
			ZoneRefreshInterval: 15 * time.Minute,
			CleanupInterval:     time.Hour,
		}
		tasks := Tasks{
			RefreshZones: func(context.Context) error {
				refreshes.Add(1)
				return nil
			},
			CleanupSubscriptions: func(context.Context) (int64, error) {
				cleanups.Add(1)
				return 3, nil
			},
		}

		go Start(ctx, clock, cfg, tasks, logger)

		// Wait for both tickers to be armed before advancing.
		require.NoError(t, clock.BlockUntilContext(ctx, 2))

		clock.Advance(15 * time.Minute)
		assert.Eventually(t, func() bool { return refreshes.Load() == 1 }, time.Second, time.Millisecond)
		assert.Equal(t, int64(0), cleanups.Load())

		clock.Advance(45 * time.Minute)
		assert.Eventually(t, func() bool { return cleanups.Load() == 1 }, time.Second, time.Millisecond)
		assert.Eventually(t, func() bool { return refreshes.Load() >= 2 }, time.Second, time.Millisecond)
	})

	t.Run("task errors do not stop the loop", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int64
		tasks := Tasks{
			RefreshZones: func(context.Context) error {
				calls.Add(1)
				return errors.New("store unavailable")
			},
		}

		go Start(ctx, clock, Config{ZoneRefreshInterval: time.Minute}, tasks, logger)
		require.NoError(t, clock.BlockUntilContext(ctx, 1))

		clock.Advance(time.Minute)
		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

		clock.Advance(time.Minute)
		assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	})

	t.Run("zero interval disables a task", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		ctx, cancel := context.WithCancel(context.Background())

		started := make(chan struct{})
		go func() {
			close(started)
			Start(ctx, clock, Config{}, Tasks{}, logger)
		}()
		<-started

		cancel()
		// Start returns promptly with nothing scheduled.
		assert.Eventually(t, func() bool { return ctx.Err() != nil }, time.Second, time.Millisecond)
	})
}
