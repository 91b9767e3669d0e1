package usage

import (
	"context"
	"log/slog"
	"time"
)

// StartReaper runs a background goroutine that periodically removes
// idle sessions from the ledger. The ledger defines the idle-age
// policy; this worker only supplies the schedule.
func StartReaper(ctx context.Context, ledger *Ledger, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session reaper started", "interval", interval, "max_age", maxAge)

		for {
			select {
			case <-ticker.C:
				if reaped := ledger.ReapIdle(ctx, maxAge); reaped > 0 {
					slog.Info("Session reaper removed idle sessions", "count", reaped)
				}
			case <-ctx.Done():
				slog.Info("Session reaper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
