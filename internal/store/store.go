// Package store persists league state in a SQLite key/value table. Every value
// is a JSON document addressed by a season namespace and a fixed key.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/sam-maryland/around-the-table/internal/league"
)

// Keys within a season namespace
const (
	KeyPlayers         = "players"
	KeyPicks           = "picks"
	KeyResults         = "results"
	KeyCurrentWeek     = "current_week"
	KeyOddsCache       = "odds_cache"
	KeyLastResultCheck = "last_result_check"
)

// ErrNotFound is returned by Get when a key has never been written
var ErrNotFound = errors.New("key not found")

const schema = `CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// Store reads and writes league state for one season namespace
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	namespace string
	roster    []string
	maxWeeks  int
	logger    *logrus.Logger
}

// Open opens (or creates) the database at path. Use ":memory:" for a throwaway store.
func Open(path, namespace string, roster []string, logger *logrus.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// a single connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path":      path,
		"namespace": namespace,
	}).Debug("Opened league store")

	return &Store{
		db:        db,
		namespace: namespace,
		roster:    roster,
		logger:    logger,
	}, nil
}

// SetMaxWeeks sets the last pickable week on every state the store loads
func (s *Store) SetMaxWeeks(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxWeeks = n
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Namespace returns the season namespace the store addresses
func (s *Store) Namespace() string {
	return s.namespace
}

// Get reads the raw JSON stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put writes raw JSON under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.putTx(ctx, s.db, key, value)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) putTx(ctx context.Context, ex execer, key string, value []byte) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value under key into out
func (s *Store) GetJSON(ctx context.Context, key string, out interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and writes it under key
func (s *Store) PutJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}

// Load reads the whole league state. Missing or malformed entries are
// replaced by a freshly seeded roster, empty pick and result lists, and week 1.
func (s *Store) Load(ctx context.Context) (league.State, error) {
	state := league.NewState(s.roster)
	state.MaxWeeks = s.maxWeeks

	var players []league.Player
	if ok, err := s.loadKey(ctx, KeyPlayers, &players); err != nil {
		return state, err
	} else if ok && len(players) > 0 {
		state.Players = players
	}

	var picks []league.Pick
	if ok, err := s.loadKey(ctx, KeyPicks, &picks); err != nil {
		return state, err
	} else if ok && picks != nil {
		state.Picks = picks
	}

	var results []league.GameResult
	if ok, err := s.loadKey(ctx, KeyResults, &results); err != nil {
		return state, err
	} else if ok && results != nil {
		state.Results = results
	}

	var week int
	if ok, err := s.loadKey(ctx, KeyCurrentWeek, &week); err != nil {
		return state, err
	} else if ok && week > 0 {
		state.CurrentWeek = week
	}

	return state, nil
}

// loadKey decodes key into out. It reports false for absent or malformed values
// and only returns an error when the database itself fails.
func (s *Store) loadKey(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"namespace": s.namespace,
			"key":       key,
		}).Warn("Ignoring malformed stored value, using defaults")
		return false, nil
	}
	return true, nil
}

// Save writes the whole league state in one transaction
func (s *Store) Save(ctx context.Context, state league.State) error {
	entries := map[string]interface{}{
		KeyPlayers:     state.Players,
		KeyPicks:       state.Picks,
		KeyResults:     state.Results,
		KeyCurrentWeek: state.CurrentWeek,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, v := range entries {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if err := s.putTx(ctx, tx, key, data); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit league state: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"namespace": s.namespace,
		"players":   len(state.Players),
		"picks":     len(state.Picks),
	}).Debug("Saved league state")
	return nil
}

// Update loads the state, applies fn and saves the result. When fn returns an
// error nothing is written. Updates are serialised so the MCP handlers and the
// result checker never interleave a read-modify-write.
func (s *Store) Update(ctx context.Context, fn func(*league.State) error) (league.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.Load(ctx)
	if err != nil {
		return state, err
	}
	if err := fn(&state); err != nil {
		return state, err
	}
	if err := s.Save(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}
