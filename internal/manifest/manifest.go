// Package manifest records what the generator produced for each input file,
// keyed by a content digest, so repeated runs can skip unchanged inputs. The
// store lives in a local sqlite database; removing it simply forces a full
// regeneration.
package manifest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS generated (
	path         TEXT PRIMARY KEY,
	digest       TEXT NOT NULL,
	output       TEXT NOT NULL,
	generated_at TIMESTAMP NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens a manifest database, creating parent directories as
// needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create manifest directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init manifest schema: %w", err)
	}
	return &Store{db: db}, nil
}

// UpToDate reports whether the recorded digest for path matches.
func (s *Store) UpToDate(path, digest string) (bool, error) {
	var recorded string
	err := s.db.QueryRow(`SELECT digest FROM generated WHERE path = ?`, path).Scan(&recorded)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, err
	}
	return recorded == digest, nil
}

// Record stores or replaces the entry for path.
func (s *Store) Record(path, digest, output string) error {
	_, err := s.db.Exec(
		`INSERT INTO generated (path, digest, output, generated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET digest = excluded.digest, output = excluded.output, generated_at = excluded.generated_at`,
		path, digest, output, time.Now().UTC(),
	)
	return err
}

// Forget drops the entry for path, forcing regeneration on the next run.
func (s *Store) Forget(path string) error {
	_, err := s.db.Exec(`DELETE FROM generated WHERE path = ?`, path)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
