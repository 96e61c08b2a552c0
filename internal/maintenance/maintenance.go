// Package maintenance runs periodic background tasks as Go tickers: the
// risk-zone cache refresh and the pruning of long-deactivated push
// subscriptions. All scheduled work is driven from Go since the API is
// already a persistent, long-running service.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	ZoneRefreshInterval time.Duration // Re-derive zones and warm the cache
	CleanupInterval     time.Duration // Purge long-deactivated subscriptions
}

// Tasks are the callbacks the tickers drive. Either may be nil.
type Tasks struct {
	RefreshZones         func(ctx context.Context) error
	CleanupSubscriptions func(ctx context.Context) (int64, error)
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`. The clock is injected so
// tests can drive the tickers with a fake.
func Start(ctx context.Context, clock clockwork.Clock, cfg Config, tasks Tasks, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"zone_refresh", cfg.ZoneRefreshInterval,
		"cleanup", cfg.CleanupInterval)

	var tickers []clockwork.Ticker
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.ZoneRefreshInterval > 0 && tasks.RefreshZones != nil {
		t := clock.NewTicker(cfg.ZoneRefreshInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.Chan(), func() {
			if err := tasks.RefreshZones(ctx); err != nil {
				logger.Warn("Zone refresh failed", "error", err)
			}
		})
	}

	if cfg.CleanupInterval > 0 && tasks.CleanupSubscriptions != nil {
		t := clock.NewTicker(cfg.CleanupInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.Chan(), func() {
			n, err := tasks.CleanupSubscriptions(ctx)
			if err != nil {
				logger.Warn("Subscription cleanup failed", "error", err)
			} else if n > 0 {
				logger.Info("Subscription cleanup complete", "removed", n)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
