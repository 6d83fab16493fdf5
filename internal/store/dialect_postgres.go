package store

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DSN(cfg DialectConfig) string { return cfg.URL }

// RewriteQuery converts ? placeholders to $1, $2, ...
func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) UpsertProgressQuery() string {
	return `INSERT INTO course_progress (course_id, lesson_ids, updated_seq) VALUES (?, ?, 1)
		ON CONFLICT (course_id) DO UPDATE SET
			lesson_ids = EXCLUDED.lesson_ids,
			updated_seq = course_progress.updated_seq + 1`
}
