package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/braincrumbs/internal/config"
	"github.com/roach88/braincrumbs/internal/progress"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store persists course progress in a SQL database.
// It implements progress.Store and is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ progress.Store = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	return OpenDialect(NewSQLiteDialect(), DialectConfig{Path: path})
}

// OpenConfig opens the database selected by cfg.
func OpenConfig(cfg *config.Config) (*Store, error) {
	dialect, dc, err := DialectFor(cfg)
	if err != nil {
		return nil, err
	}
	return OpenDialect(dialect, dc)
}

// OpenDialect opens a database with an explicit dialect.
func OpenDialect(dialect Dialect, dc DialectConfig) (*Store, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(dc))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	if err := applySchema(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect returns the store's dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Read returns the completed lesson ids stored for courseID, or nil when
// nothing has been stored. A value that is not a JSON array of strings
// yields an error wrapping progress.ErrCorrupt.
func (s *Store) Read(ctx context.Context, courseID string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		s.dialect.RewriteQuery("SELECT lesson_ids FROM course_progress WHERE course_id = ?"),
		courseID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress for %q: %w", courseID, err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: course %q: %v", progress.ErrCorrupt, courseID, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Write replaces the stored set for courseID and bumps its revision.
func (s *Store) Write(ctx context.Context, courseID string, lessonIDs []string) error {
	if lessonIDs == nil {
		lessonIDs = []string{}
	}
	encoded, err := json.Marshal(lessonIDs)
	if err != nil {
		return fmt.Errorf("encode progress for %q: %w", courseID, err)
	}

	if _, err := s.db.ExecContext(ctx,
		s.dialect.RewriteQuery(s.dialect.UpsertProgressQuery()),
		courseID, string(encoded),
	); err != nil {
		return fmt.Errorf("write progress for %q: %w", courseID, err)
	}
	return nil
}

// Revision returns how many times courseID has been written (0 if never).
func (s *Store) Revision(ctx context.Context, courseID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		s.dialect.RewriteQuery("SELECT updated_seq FROM course_progress WHERE course_id = ?"),
		courseID,
	).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read revision for %q: %w", courseID, err)
	}
	return seq, nil
}

// Courses returns the ids of every course with stored progress, sorted.
func (s *Store) Courses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT course_id FROM course_progress ORDER BY course_id ASC")
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the stored progress for courseID. Deleting an absent
// course is not an error.
func (s *Store) Delete(ctx context.Context, courseID string) error {
	if _, err := s.db.ExecContext(ctx,
		s.dialect.RewriteQuery("DELETE FROM course_progress WHERE course_id = ?"),
		courseID,
	); err != nil {
		return fmt.Errorf("delete progress for %q: %w", courseID, err)
	}
	return nil
}

// applySchema creates tables if they don't exist. This function is idempotent.
func applySchema(db *sql.DB, dialect Dialect) error {
	schema, err := schemaFS.ReadFile("schema/" + dialect.Name() + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for dialect %q: %w", dialect.Name(), err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
