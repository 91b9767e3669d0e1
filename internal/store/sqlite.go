package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lucidra/sandbox-server/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		plan TEXT NOT NULL,
		tokens_used INTEGER NOT NULL DEFAULT 0,
		ai_calls_count INTEGER NOT NULL DEFAULT 0,
		user_opted_in INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_used_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_used ON sessions(last_used_at);

	CREATE TABLE IF NOT EXISTS missions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		challenge TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		category TEXT NOT NULL,
		subtasks_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_missions_user ON missions(user_id, created_at);

	CREATE TABLE IF NOT EXISTS user_progress (
		user_id TEXT PRIMARY KEY,
		total_xp INTEGER NOT NULL DEFAULT 0,
		badges_json TEXT NOT NULL,
		completed_json TEXT NOT NULL,
		active_json TEXT NOT NULL,
		daily_prompting INTEGER NOT NULL DEFAULT 0,
		weekly_completion INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// ListSessions returns all persisted usage sessions.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT session_id, plan, tokens_used, ai_calls_count, user_opted_in,
		       created_at, last_used_at
		FROM sessions`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var sess domain.Session
		var plan string
		var createdAt, lastUsedAt int64

		if err := rows.Scan(
			&sess.SessionID, &plan, &sess.TokensUsed, &sess.AICallsCount,
			&sess.UserOptedIn, &createdAt, &lastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		sess.Plan = domain.Plan(plan)
		sess.CreatedAt = time.Unix(createdAt, 0)
		sess.LastUsedAt = time.Unix(lastUsedAt, 0)
		sessions = append(sessions, &sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// UpsertSession creates or updates a usage session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO sessions (session_id, plan, tokens_used, ai_calls_count, user_opted_in, created_at, last_used_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		plan = excluded.plan,
		tokens_used = excluded.tokens_used,
		ai_calls_count = excluded.ai_calls_count,
		user_opted_in = excluded.user_opted_in,
		last_used_at = excluded.last_used_at`

	_, err := s.db.ExecContext(ctx, query,
		session.SessionID, string(session.Plan), session.TokensUsed,
		session.AICallsCount, session.UserOptedIn,
		session.CreatedAt.Unix(), session.LastUsedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes a usage session record.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	query := `DELETE FROM sessions WHERE session_id = ?`
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListMissions returns all persisted workflow missions. The subtask
// tree is stored as a JSON blob; derived mission fields are recomputed
// after decoding rather than trusted from storage.
func (s *SQLiteStore) ListMissions(ctx context.Context) ([]*domain.WorkflowMission, error) {
	query := `
		SELECT id, user_id, title, description, challenge, difficulty,
		       category, subtasks_json, created_at, updated_at
		FROM missions ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	var missions []*domain.WorkflowMission
	for rows.Next() {
		var m domain.WorkflowMission
		var difficulty, subtasksJSON string
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Title, &m.Description, &m.Challenge,
			&difficulty, &m.Category, &subtasksJSON, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mission row: %w", err)
		}

		if err := json.Unmarshal([]byte(subtasksJSON), &m.Subtasks); err != nil {
			return nil, fmt.Errorf("decode subtasks for mission %s: %w", m.ID, err)
		}

		m.Difficulty = domain.Difficulty(difficulty)
		m.CreatedAt = time.Unix(createdAt, 0)
		m.UpdatedAt = time.Unix(updatedAt, 0)
		for i := range m.Subtasks {
			m.Subtasks[i].RecomputeXP()
		}
		m.Recompute()
		missions = append(missions, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missions: %w", err)
	}
	return missions, nil
}

// UpsertMission creates or updates a mission record.
func (s *SQLiteStore) UpsertMission(ctx context.Context, mission *domain.WorkflowMission) error {
	subtasksJSON, err := json.Marshal(mission.Subtasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}

	query := `
	INSERT INTO missions (id, user_id, title, description, challenge, difficulty, category, subtasks_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		challenge = excluded.challenge,
		difficulty = excluded.difficulty,
		category = excluded.category,
		subtasks_json = excluded.subtasks_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		mission.ID, mission.UserID, mission.Title, mission.Description,
		mission.Challenge, string(mission.Difficulty), mission.Category,
		string(subtasksJSON), mission.CreatedAt.Unix(), mission.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert mission: %w", err)
	}
	return nil
}

// ListProgress returns all persisted user progress records.
func (s *SQLiteStore) ListProgress(ctx context.Context) ([]*domain.UserProgress, error) {
	query := `
		SELECT user_id, total_xp, badges_json, completed_json, active_json,
		       daily_prompting, weekly_completion
		FROM user_progress`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var records []*domain.UserProgress
	for rows.Next() {
		var p domain.UserProgress
		var badgesJSON, completedJSON, activeJSON string

		if err := rows.Scan(
			&p.UserID, &p.TotalXP, &badgesJSON, &completedJSON, &activeJSON,
			&p.Streaks.DailyPrompting, &p.Streaks.WeeklyCompletion,
		); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}

		if err := json.Unmarshal([]byte(badgesJSON), &p.Badges); err != nil {
			return nil, fmt.Errorf("decode badges for user %s: %w", p.UserID, err)
		}
		if err := json.Unmarshal([]byte(completedJSON), &p.CompletedMissions); err != nil {
			return nil, fmt.Errorf("decode completed missions for user %s: %w", p.UserID, err)
		}
		if err := json.Unmarshal([]byte(activeJSON), &p.ActiveWorkflows); err != nil {
			return nil, fmt.Errorf("decode active workflows for user %s: %w", p.UserID, err)
		}

		records = append(records, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return records, nil
}

// UpsertProgress creates or updates a user progress record. Level is
// derived from total XP on load, so it is not stored.
func (s *SQLiteStore) UpsertProgress(ctx context.Context, progress *domain.UserProgress) error {
	badgesJSON, err := json.Marshal(progress.Badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}
	completedJSON, err := json.Marshal(progress.CompletedMissions)
	if err != nil {
		return fmt.Errorf("encode completed missions: %w", err)
	}
	activeJSON, err := json.Marshal(progress.ActiveWorkflows)
	if err != nil {
		return fmt.Errorf("encode active workflows: %w", err)
	}

	query := `
	INSERT INTO user_progress (user_id, total_xp, badges_json, completed_json, active_json, daily_prompting, weekly_completion)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		total_xp = excluded.total_xp,
		badges_json = excluded.badges_json,
		completed_json = excluded.completed_json,
		active_json = excluded.active_json,
		daily_prompting = excluded.daily_prompting,
		weekly_completion = excluded.weekly_completion`

	_, err = s.db.ExecContext(ctx, query,
		progress.UserID, progress.TotalXP, string(badgesJSON),
		string(completedJSON), string(activeJSON),
		progress.Streaks.DailyPrompting, progress.Streaks.WeeklyCompletion,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
