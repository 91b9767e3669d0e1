// Package store provides data persistence interfaces and implementations.
//
// The in-memory tables owned by the usage ledger, mission store, and
// progression engine are the source of truth. The repository is a
// best-effort durable mirror: written through on every mutation and
// loaded back into memory at startup.
package store

import (
	"context"
	"time"

	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/shared"
)

// Repository defines the interface for persisting sandbox state.
type Repository interface {
	// ListSessions returns all persisted usage sessions.
	ListSessions(ctx context.Context) ([]*domain.Session, error)

	// UpsertSession creates or updates a usage session record.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes a usage session record.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListMissions returns all persisted workflow missions.
	ListMissions(ctx context.Context) ([]*domain.WorkflowMission, error)

	// UpsertMission creates or updates a mission record, including its
	// serialized subtask tree.
	UpsertMission(ctx context.Context, mission *domain.WorkflowMission) error

	// ListProgress returns all persisted user progress records.
	ListProgress(ctx context.Context) ([]*domain.UserProgress, error)

	// UpsertProgress creates or updates a user progress record.
	UpsertProgress(ctx context.Context, progress *domain.UserProgress) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// WithRetry runs fn, retrying with exponential backoff when SQLite
// reports a busy/locked conflict. Other errors return immediately.
func WithRetry(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || ctx.Err() != nil {
			return err
		}
		if i < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<i))
		}
	}
	return err
}
