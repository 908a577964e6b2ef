package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single SQLite database. The path namespace
// lives in one table, which keeps the whole session corpus in one portable
// file and makes listing cheap.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite-backed store at the given database
// path. Pass ":memory:" for an ephemeral store.
func NewSQLite(dataSourceName string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			path TEXT PRIMARY KEY,
			is_dir INTEGER NOT NULL DEFAULT 0,
			data BLOB,
			modified_at TIMESTAMP NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}

// Exists reports whether a file or directory exists at path.
func (s *SQLite) Exists(ctx context.Context, path string) (bool, error) {
	p := normalize(path)
	if p == "" {
		return true, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM entries WHERE path = ?`, p).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

// Read returns the contents of the file at path.
func (s *SQLite) Read(ctx context.Context, path string) ([]byte, error) {
	p := normalize(path)
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM entries WHERE path = ? AND is_dir = 0`, p).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write creates or replaces the file at path, recording parent directories
// so that Exists and List behave like the filesystem backend.
func (s *SQLite) Write(ctx context.Context, path string, data []byte) error {
	p := normalize(path)
	if p == "" {
		return fmt.Errorf("write %s: empty path", path)
	}
	if err := s.ensureParents(ctx, p); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (path, is_dir, data, modified_at) VALUES (?, 0, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, modified_at = excluded.modified_at
	`, p, data, time.Now())
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates the directory at path along with any parents.
func (s *SQLite) MkdirAll(ctx context.Context, path string) error {
	p := normalize(path)
	if p == "" {
		return nil
	}
	if err := s.ensureParents(ctx, p); err != nil {
		return err
	}
	if err := s.insertDir(ctx, p); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// List returns the immediate children of the directory at path.
func (s *SQLite) List(ctx context.Context, path string) ([]Entry, error) {
	p := normalize(path)
	if p != "" {
		var isDir int
		err := s.db.QueryRowContext(ctx,
			`SELECT is_dir FROM entries WHERE path = ?`, p).Scan(&isDir)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		if isDir == 0 {
			return nil, fmt.Errorf("list %s: not a directory", path)
		}
	}

	prefix := ""
	if p != "" {
		prefix = p + "/"
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, is_dir FROM entries
		WHERE path LIKE ? ESCAPE '\' AND path != ?
		ORDER BY path ASC
	`, escapeLike(prefix)+"%", p)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var child string
		var isDir int
		if err := rows.Scan(&child, &isDir); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		rest := strings.TrimPrefix(child, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		entries = append(entries, Entry{Name: rest, IsDir: isDir == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// Delete removes the file or directory (recursively) at path.
func (s *SQLite) Delete(ctx context.Context, path string) error {
	p := normalize(path)
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE path = ? OR path LIKE ? ESCAPE '\'`, p, escapeLike(p)+"/%")
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	return nil
}

// escapeLike neutralizes LIKE metacharacters so a stored path containing
// % or _ matches literally.
func escapeLike(p string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(p)
}

func (s *SQLite) ensureParents(ctx context.Context, p string) error {
	parts := strings.Split(p, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		if err := s.insertDir(ctx, dir); err != nil {
			return fmt.Errorf("creating parent %s: %w", dir, err)
		}
	}
	return nil
}

func (s *SQLite) insertDir(ctx context.Context, p string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (path, is_dir, data, modified_at) VALUES (?, 1, NULL, ?)
		ON CONFLICT(path) DO NOTHING
	`, p, time.Now())
	return err
}
