// Package cache stores generated artifacts keyed by the inputs that
// produced them. Generation is deterministic, so a key hit can be served
// without running the pipeline at all.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/varlund/dispatchgen/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	key        TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	filename   TEXT NOT NULL,
	content    BLOB NOT NULL,
	created_at TEXT NOT NULL
);`

// Store is one on-disk artifact cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for one generation run: a hash of the grammar
// bytes, the configuration fields that shape the artifact, and the
// generator version, so artifacts never leak across generator builds.
func Key(grammar []byte, fingerprint, version string) string {
	h := sha256.New()
	h.Write(grammar)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(version))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached artifact for key, if any.
func (s *Store) Lookup(key string) (*pipeline.Artifact, bool, error) {
	var a pipeline.Artifact
	err := s.db.QueryRow(`SELECT filename, content FROM artifacts WHERE key = ?`, key).
		Scan(&a.Filename, &a.Content)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	return &a, true, nil
}

// Put stores the artifact produced by one run under key.
func (s *Store) Put(key, runID string, a *pipeline.Artifact) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO artifacts (key, run_id, filename, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		key, runID, a.Filename, a.Content, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
