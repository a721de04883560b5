package eventlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History persists decisions and focus sessions to sqlite so past runs
// can be inspected after the fact. Writes are best-effort: a failed
// insert is the caller's warning, never a crash.
type History struct {
	db    *sql.DB
	runID string
}

// DecisionRow is one persisted decision.
type DecisionRow struct {
	RunID     string
	Seq       uint64
	State     string
	Reason    string
	CreatedAt time.Time
}

// SessionRow is one persisted focus session.
type SessionRow struct {
	ID        string
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
}

// OpenHistory opens (and migrates) the history database.
// Use ":memory:" for tests.
func OpenHistory(path, runID string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &History{db: db, runID: runID}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			state TEXT NOT NULL,
			reason TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_s INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordDecision stores one per-window decision.
func (h *History) RecordDecision(seq uint64, state, reason string, at time.Time) error {
	_, err := h.db.Exec(
		`INSERT INTO decisions (run_id, seq, state, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		h.runID, seq, state, reason, at.UTC().Format(time.RFC3339),
	)
	return err
}

// RecordSession stores one completed focus session.
func (h *History) RecordSession(id string, start, end time.Time) error {
	_, err := h.db.Exec(
		`INSERT INTO sessions (id, run_id, started_at, ended_at, duration_s) VALUES (?, ?, ?, ?, ?)`,
		id, h.runID,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		int64(end.Sub(start).Seconds()),
	)
	return err
}

// RecentDecisions returns the newest decisions for this run, newest first.
func (h *History) RecentDecisions(limit int) ([]DecisionRow, error) {
	rows, err := h.db.Query(
		`SELECT run_id, seq, state, reason, created_at
		 FROM decisions WHERE run_id = ? ORDER BY id DESC LIMIT ?`,
		h.runID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var r DecisionRow
		var created string
		if err := rows.Scan(&r.RunID, &r.Seq, &r.State, &r.Reason, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sessions returns all focus sessions for this run, oldest first.
func (h *History) Sessions() ([]SessionRow, error) {
	rows, err := h.db.Query(
		`SELECT id, run_id, started_at, ended_at, duration_s
		 FROM sessions WHERE run_id = ? ORDER BY started_at`,
		h.runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var started, ended string
		var durS int64
		if err := rows.Scan(&r.ID, &r.RunID, &started, &ended, &durS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, ended); err == nil {
			r.EndedAt = t
		}
		r.Duration = time.Duration(durS) * time.Second
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
