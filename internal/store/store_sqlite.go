package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenium/postgate/internal/model"
)

// SQLiteStore backs the gate with a local SQLite database: a daily counter
// table, a fingerprint index with a uniqueness constraint, and an action log.
// The unique constraint on fingerprints is what closes the concurrent
// check-then-insert dedupe race for multi-process callers on one host.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_counts (
			platform TEXT NOT NULL,
			kind TEXT NOT NULL,
			day TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (platform, kind, day)
		);
		CREATE TABLE IF NOT EXISTS fingerprints (
			fingerprint TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			first_seen TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			platform TEXT NOT NULL,
			kind TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			allow INTEGER NOT NULL,
			reason_codes TEXT NOT NULL,
			risk_score INTEGER NOT NULL,
			text_preview TEXT NOT NULL
		);`)
	if err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTodayCount(ctx context.Context, platform model.Platform, kind model.ActionKind) (int, error) {
	day := time.Now().UTC().Format(time.DateOnly)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM daily_counts WHERE platform = ? AND kind = ? AND day = ?`,
		string(platform), string(kind), day).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: today count: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) IsDuplicate(ctx context.Context, fingerprint string, windowDays int) (bool, error) {
	var firstSeen string
	err := s.db.QueryRowContext(ctx,
		`SELECT first_seen FROM fingerprints WHERE fingerprint = ?`, fingerprint).Scan(&firstSeen)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: duplicate lookup: %w", err)
	}
	if windowDays <= 0 {
		return true, nil
	}
	seen, err := time.Parse(time.RFC3339, firstSeen)
	if err != nil {
		return false, fmt.Errorf("store: parse first_seen: %w", err)
	}
	return time.Since(seen) < time.Duration(windowDays)*24*time.Hour, nil
}

func (s *SQLiteStore) IncrementCounter(ctx context.Context, platform model.Platform, kind model.ActionKind) error {
	day := time.Now().UTC().Format(time.DateOnly)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_counts (platform, kind, day, count) VALUES (?, ?, ?, 1)
		ON CONFLICT (platform, kind, day) DO UPDATE SET count = count + 1`,
		string(platform), string(kind), day)
	if err != nil {
		return fmt.Errorf("store: increment counter: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddFingerprint(ctx context.Context, fingerprint string, platform model.Platform) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fingerprints (fingerprint, platform, first_seen) VALUES (?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING`,
		fingerprint, string(platform), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: add fingerprint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LogAction(ctx context.Context, action *model.CandidateAction, decision *model.Decision, textPreview string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_log (ts, platform, kind, fingerprint, allow, reason_codes, risk_score, text_preview)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		string(action.Platform), string(action.Kind),
		decision.Fingerprint, boolToInt(decision.Allow),
		strings.Join(decision.ReasonStrings(), ","),
		decision.RiskScore, textPreview)
	if err != nil {
		return fmt.Errorf("store: log action: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
