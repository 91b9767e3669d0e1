package usage

import (
	"context"
	"testing"
	"time"

	"github.com/lucidra/sandbox-server/internal/domain"
)

func TestStartReaper_RemovesIdleSessions(t *testing.T) {
	l := NewLedger(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := time.Now()
	l.now = func() time.Time { return base.Add(-time.Hour) }
	l.CreateSession(ctx, "stale", domain.PlanFree)
	l.now = func() time.Time { return base }

	StartReaper(ctx, l, 10*time.Millisecond, 30*time.Minute)

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := l.Session("stale"); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("Expected the reaper to remove the stale session")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartReaper_StopsOnContextCancel(t *testing.T) {
	l := NewLedger(nil)
	ctx, cancel := context.WithCancel(context.Background())

	StartReaper(ctx, l, 10*time.Millisecond, time.Hour)
	cancel()
	// Let an in-flight tick drain before seeding the ledger.
	time.Sleep(30 * time.Millisecond)

	// Sessions created after cancellation must survive sweeps.
	base := time.Now()
	l.now = func() time.Time { return base.Add(-2 * time.Hour) }
	l.CreateSession(context.Background(), "old", domain.PlanFree)
	l.now = func() time.Time { return base }

	time.Sleep(50 * time.Millisecond)
	if _, ok := l.Session("old"); !ok {
		t.Error("Expected no reaping after context cancellation")
	}
}
