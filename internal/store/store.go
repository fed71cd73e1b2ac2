// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Storage keys for key-value documents.
const (
	KeySettings      = "pftrainer_settings_v1"
	KeyRangeSets     = "pftrainer_rangesets_v1"
	KeyReviewHands   = "pftrainer_review_hands_v1"
	KeyPrevWeakCount = "pftrainer_prev_weak_count_v1"
)

// Store wraps SQLite access for settings, range sets and sessions.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for swallowed errors.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the time used when seeding defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			range_set_id TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			question_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS question_results (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			question_id TEXT NOT NULL,
			hand TEXT NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			correct_action TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			range_set_id TEXT NOT NULL,
			answered_at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_question_results_hand ON question_results(hand);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores a raw value under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// LoadJSON decodes the document under key. Missing keys and read or parse
// failures return fallback.
func LoadJSON[T any](ctx context.Context, s *Store, key string, fallback T) T {
	v, _ := loadJSON(ctx, s, key, fallback)
	return v
}

// loadJSON also reports whether a stored value was decoded.
func loadJSON[T any](ctx context.Context, s *Store, key string, fallback T) (T, bool) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		s.log.Warn("failed to read key", zap.String("key", key), zap.Error(err))
		return fallback, false
	}
	if !ok {
		return fallback, false
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Warn("failed to decode key", zap.String("key", key), zap.Error(err))
		return fallback, false
	}
	return out, true
}

// SaveJSON encodes value under key. Failures are logged and swallowed.
func (s *Store) SaveJSON(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error("failed to encode key", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.Put(ctx, key, string(data)); err != nil {
		s.log.Error("failed to write key", zap.String("key", key), zap.Error(err))
	}
}

// LoadSettings returns saved settings or the defaults.
func (s *Store) LoadSettings(ctx context.Context) model.AppSettings {
	settings := LoadJSON(ctx, s, KeySettings, model.DefaultSettings())
	if settings.JudgeMode == "" {
		settings.JudgeMode = model.JudgeFrequency
	}
	if settings.CustomScopeHands == nil {
		settings.CustomScopeHands = []model.HandCode{}
	}
	return settings
}

// SaveSettings persists settings.
func (s *Store) SaveSettings(ctx context.Context, settings model.AppSettings) {
	s.SaveJSON(ctx, KeySettings, settings)
}

// LoadReviewHands returns the hands queued for the next review session.
func (s *Store) LoadReviewHands(ctx context.Context) []model.HandCode {
	return LoadJSON(ctx, s, KeyReviewHands, []model.HandCode{})
}

// SaveReviewHands queues hands for the next review session.
func (s *Store) SaveReviewHands(ctx context.Context, hands []model.HandCode) {
	s.SaveJSON(ctx, KeyReviewHands, hands)
}

// ClearReviewHands drops the review queue.
func (s *Store) ClearReviewHands(ctx context.Context) {
	if err := s.Delete(ctx, KeyReviewHands); err != nil {
		s.log.Error("failed to clear review hands", zap.Error(err))
	}
}

// LoadPrevWeakCount returns the weak-hand count recorded by the last stats run.
func (s *Store) LoadPrevWeakCount(ctx context.Context) *int {
	n, ok := loadJSON(ctx, s, KeyPrevWeakCount, 0)
	if !ok {
		return nil
	}
	return &n
}

// SavePrevWeakCount records the weak-hand count for the next stats run.
func (s *Store) SavePrevWeakCount(ctx context.Context, n int) {
	s.SaveJSON(ctx, KeyPrevWeakCount, n)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", v, err)
	}
	return t, nil
}
