package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucidra/sandbox-server/internal/domain"
)

func newTestDB(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "sandbox.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteStore_SessionRoundTrip(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	sess := &domain.Session{
		SessionID:    "s1",
		Plan:         domain.PlanBasic,
		TokensUsed:   1234,
		AICallsCount: 7,
		UserOptedIn:  true,
		CreatedAt:    time.Now().Add(-time.Hour).Truncate(time.Second),
		LastUsedAt:   time.Now().Truncate(time.Second),
	}
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("Failed to upsert session: %v", err)
	}

	sessions, err := repo.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}

	got := sessions[0]
	if got.SessionID != sess.SessionID || got.Plan != sess.Plan {
		t.Errorf("Expected %s/%s, got %s/%s", sess.SessionID, sess.Plan, got.SessionID, got.Plan)
	}
	if got.TokensUsed != 1234 || got.AICallsCount != 7 {
		t.Errorf("Expected counters 1234/7, got %d/%d", got.TokensUsed, got.AICallsCount)
	}
	if !got.UserOptedIn {
		t.Error("Expected userOptedIn=true")
	}
	if !got.LastUsedAt.Equal(sess.LastUsedAt) {
		t.Errorf("Expected lastUsedAt %v, got %v", sess.LastUsedAt, got.LastUsedAt)
	}
}

func TestSQLiteStore_SessionUpsertOverwrites(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	sess := &domain.Session{SessionID: "s1", Plan: domain.PlanFree, CreatedAt: now, LastUsedAt: now}
	repo.UpsertSession(ctx, sess)

	sess.TokensUsed = 500
	sess.UserOptedIn = true
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("Failed to upsert session twice: %v", err)
	}

	sessions, _ := repo.ListSessions(ctx)
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session after double upsert, got %d", len(sessions))
	}
	if sessions[0].TokensUsed != 500 {
		t.Errorf("Expected updated tokens 500, got %d", sessions[0].TokensUsed)
	}
}

func TestSQLiteStore_DeleteSession(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	now := time.Now()
	repo.UpsertSession(ctx, &domain.Session{SessionID: "s1", Plan: domain.PlanFree, CreatedAt: now, LastUsedAt: now})

	if err := repo.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	sessions, _ := repo.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("Expected no sessions after delete, got %d", len(sessions))
	}

	// Deleting a missing session is not an error.
	if err := repo.DeleteSession(ctx, "ghost"); err != nil {
		t.Errorf("Expected no error deleting unknown session, got %v", err)
	}
}

func TestSQLiteStore_MissionRoundTrip(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	m := &domain.WorkflowMission{
		ID:          "m1",
		UserID:      "s1",
		Title:       "Launch announcement",
		Description: "Write and polish the launch post",
		Challenge:   "The draft is unfocused",
		Difficulty:  domain.DifficultyIntermediate,
		Category:    "writing",
		Subtasks: []domain.WorkflowSubtask{
			{
				ID:     "st1",
				Title:  "Tighten the intro",
				Status: domain.SubtaskCompleted,
				Iterations: []domain.SubtaskIteration{
					{ID: "it1", IterationNumber: 1, PromptUsed: "p", AdvisorResponse: "r", XPAwarded: 25, Timestamp: now},
					{ID: "it2", IterationNumber: 2, PromptUsed: "p2", AdvisorResponse: "r2", UserAnnotation: "note", XPAwarded: 35, Timestamp: now},
				},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.UpsertMission(ctx, m); err != nil {
		t.Fatalf("Failed to upsert mission: %v", err)
	}

	missions, err := repo.ListMissions(ctx)
	if err != nil {
		t.Fatalf("Failed to list missions: %v", err)
	}
	if len(missions) != 1 {
		t.Fatalf("Expected 1 mission, got %d", len(missions))
	}

	got := missions[0]
	if got.Title != m.Title || got.Difficulty != m.Difficulty {
		t.Errorf("Expected %q/%q, got %q/%q", m.Title, m.Difficulty, got.Title, got.Difficulty)
	}
	if len(got.Subtasks) != 1 || len(got.Subtasks[0].Iterations) != 2 {
		t.Fatalf("Expected subtask tree preserved, got %+v", got.Subtasks)
	}

	// Derived fields are recomputed on load, not read from storage.
	if got.Subtasks[0].XPEarned != 60 {
		t.Errorf("Expected recomputed xpEarned=60, got %d", got.Subtasks[0].XPEarned)
	}
	if got.TotalXP != 60 {
		t.Errorf("Expected recomputed totalXp=60, got %d", got.TotalXP)
	}
	if got.CompletionStatus != domain.MissionCompleted {
		t.Errorf("Expected recomputed completed status, got %q", got.CompletionStatus)
	}
}

func TestSQLiteStore_ProgressRoundTrip(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	earnedAt := time.Now().Truncate(time.Second)
	p := &domain.UserProgress{
		UserID:  "s1",
		TotalXP: 450,
		Badges: []domain.EarnedBadge{
			{BadgeID: "task_decomposer", EarnedAt: earnedAt},
		},
		CompletedMissions: []string{"m1"},
		ActiveWorkflows:   []string{"m2", "m3"},
		Streaks:           domain.Streaks{DailyPrompting: 3, WeeklyCompletion: 1},
	}
	if err := repo.UpsertProgress(ctx, p); err != nil {
		t.Fatalf("Failed to upsert progress: %v", err)
	}

	records, err := repo.ListProgress(ctx)
	if err != nil {
		t.Fatalf("Failed to list progress: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.TotalXP != 450 {
		t.Errorf("Expected 450 XP, got %d", got.TotalXP)
	}
	if len(got.Badges) != 1 || got.Badges[0].BadgeID != "task_decomposer" {
		t.Errorf("Expected task_decomposer badge, got %v", got.Badges)
	}
	if len(got.CompletedMissions) != 1 || len(got.ActiveWorkflows) != 2 {
		t.Errorf("Expected mission sets preserved, got %v / %v", got.CompletedMissions, got.ActiveWorkflows)
	}
	if got.Streaks.DailyPrompting != 3 || got.Streaks.WeeklyCompletion != 1 {
		t.Errorf("Expected streaks 3/1, got %+v", got.Streaks)
	}
}

func TestSQLiteStore_Ping(t *testing.T) {
	repo := newTestDB(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Expected healthy ping, got %v", err)
	}
}
