// Package state persists FileIndexState rows in a pure-Go SQLite database,
// so the refresh orchestrator's "rows present in the store but not in the
// current scan" deletion set is a single query.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_index_state (
	user_id          TEXT NOT NULL,
	file_path        TEXT NOT NULL,
	content_hash     TEXT NOT NULL,
	file_size        INTEGER NOT NULL,
	last_modified_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, file_path)
);
`

// Store wraps a sqlite-backed file_index_state table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path. Pass
// ":memory:" for an ephemeral store, as tests do.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers per connection

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate state db: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored state for one file, or ok=false if absent.
func (s *Store) Get(ctx context.Context, userID, filePath string) (models.FileIndexState, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, file_size, last_modified_at FROM file_index_state WHERE user_id = ? AND file_path = ?`,
		userID, filePath)

	var st models.FileIndexState
	var modifiedUnix int64
	if err := row.Scan(&st.ContentHash, &st.FileSize, &modifiedUnix); err != nil {
		if err == sql.ErrNoRows {
			return models.FileIndexState{}, false, nil
		}
		return models.FileIndexState{}, false, fmt.Errorf("failed to read file state: %w", err)
	}
	st.UserID = userID
	st.FilePath = filePath
	st.LastModifiedAt = time.Unix(modifiedUnix, 0).UTC()
	return st, true, nil
}

// Upsert writes or replaces the state row for one file.
func (s *Store) Upsert(ctx context.Context, st models.FileIndexState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_index_state (user_id, file_path, content_hash, file_size, last_modified_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			file_size = excluded.file_size,
			last_modified_at = excluded.last_modified_at
	`, st.UserID, st.FilePath, st.ContentHash, st.FileSize, st.LastModifiedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert file state: %w", err)
	}
	return nil
}

// Delete removes the state row for one file.
func (s *Store) Delete(ctx context.Context, userID, filePath string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM file_index_state WHERE user_id = ? AND file_path = ?`, userID, filePath)
	if err != nil {
		return fmt.Errorf("failed to delete file state: %w", err)
	}
	return nil
}

// ListPaths returns every file_path tracked for a tenant, used to compute
// the deletion set against a fresh scan.
func (s *Store) ListPaths(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path FROM file_index_state WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file state: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan file path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteByUserID removes every state row for a tenant.
func (s *Store) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM file_index_state WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tenant state: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
