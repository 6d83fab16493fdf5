package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) DriverName() string { return "sqlite3" }

func (d *SQLiteDialect) DSN(cfg DialectConfig) string { return cfg.Path }

// RewriteQuery is the identity: SQLite uses ? placeholders.
func (d *SQLiteDialect) RewriteQuery(query string) string { return query }

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (d *SQLiteDialect) UpsertProgressQuery() string {
	return `INSERT INTO course_progress (course_id, lesson_ids, updated_seq) VALUES (?, ?, 1)
		ON CONFLICT (course_id) DO UPDATE SET
			lesson_ids = excluded.lesson_ids,
			updated_seq = course_progress.updated_seq + 1`
}
