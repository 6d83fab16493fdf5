package store

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string { return "mysql" }

func (d *MySQLDialect) DriverName() string { return "mysql" }

func (d *MySQLDialect) DSN(cfg DialectConfig) string { return cfg.URL }

// RewriteQuery is the identity: MySQL uses ? placeholders.
func (d *MySQLDialect) RewriteQuery(query string) string { return query }

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *MySQLDialect) UpsertProgressQuery() string {
	return "INSERT INTO course_progress (course_id, lesson_ids, updated_seq) VALUES (?, ?, 1) " +
		"ON DUPLICATE KEY UPDATE updated_seq = updated_seq + 1, lesson_ids = VALUES(lesson_ids)"
}
