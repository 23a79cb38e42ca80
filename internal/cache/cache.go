// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists non-empty adapter responses in SQLite so repeated
// searches skip the provider round trip.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// Store is a TTL-bounded response cache keyed by adapter and request.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	// now is swapped in tests.
	now func() time.Time
}

// DefaultPath returns ~/.cache/sourcefinder/cache.db, falling back to the
// working directory when no user cache directory is available.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "sourcefinder-cache.db"
	}
	return filepath.Join(dir, "sourcefinder", "cache.db")
}

// Open opens or creates the cache database at path. A non-positive ttl
// uses types.DefaultCacheTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = types.DefaultCacheTTL
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating cache directory")
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "opening cache database")
	}

	s := &Store{db: db, ttl: ttl, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating cache schema")
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			adapter TEXT NOT NULL,
			request_key TEXT NOT NULL,
			payload TEXT NOT NULL,
			stored_at INTEGER NOT NULL,
			PRIMARY KEY (adapter, request_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_stored_at ON responses(stored_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// RequestKey identifies req for caching. Queries differing only in case or
// whitespace share a key.
func RequestKey(req types.SearchRequest) string {
	field := req.Field
	if field == "" {
		field = types.FieldAny
	}
	q := strings.ToLower(strings.Join(strings.Fields(req.Query), " "))
	return strings.Join([]string{
		string(field),
		strconv.Itoa(req.MaxResults),
		strconv.Itoa(req.Offset),
		q,
	}, "|")
}

// Get returns the cached suggestions for adapter and req. Expired entries
// are reported as a miss.
func (s *Store) Get(ctx context.Context, adapter string, req types.SearchRequest) ([]types.Suggestion, bool, error) {
	var payload string
	var storedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, stored_at FROM responses WHERE adapter = ? AND request_key = ?`,
		adapter, RequestKey(req),
	).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "reading cached response")
	}

	if s.now().Sub(time.Unix(storedAt, 0)) > s.ttl {
		return nil, false, nil
	}

	var out []types.Suggestion
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, false, errors.Wrap(err, "decoding cached response")
	}
	return out, true, nil
}

// Put stores suggestions for adapter and req, replacing any earlier entry.
// Empty slices are not stored so a failed call is never cached.
func (s *Store) Put(ctx context.Context, adapter string, req types.SearchRequest, suggestions []types.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return errors.Wrap(err, "encoding response")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (adapter, request_key, payload, stored_at) VALUES (?, ?, ?, ?)`,
		adapter, RequestKey(req), string(payload), s.now().Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "storing response")
	}
	return nil
}

// Prune deletes entries older than olderThan and returns how many were
// removed. A non-positive olderThan uses the store TTL.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = s.ttl
	}
	cutoff := s.now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "pruning cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, errors.Wrap(err, "clearing cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM responses`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting cache entries")
	}
	return n, nil
}
