package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/braincrumbs/internal/config"
)

// Dialect defines the database-specific parts of the store.
type Dialect interface {
	// Name is the schema file stem (e.g. "sqlite", "postgres").
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(cfg DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies pool limits and session settings.
	ConfigureConnection(db *sql.DB) error

	// UpsertProgressQuery inserts or replaces one course_progress row.
	// Arguments: course_id, lesson_ids.
	UpsertProgressQuery() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// DialectFor resolves a config database type to a Dialect and its
// connection settings.
func DialectFor(cfg *config.Config) (Dialect, DialectConfig, error) {
	switch strings.ToLower(cfg.DatabaseType) {
	case config.DatabasePostgres, "postgresql":
		return NewPostgresDialect(), DialectConfig{URL: cfg.DatabaseURL}, nil
	case config.DatabaseMySQL:
		return NewMySQLDialect(), DialectConfig{URL: cfg.DatabaseURL}, nil
	case config.DatabaseSQLite, "sqlite3", "":
		return NewSQLiteDialect(), DialectConfig{Path: cfg.DatabasePath}, nil
	default:
		return nil, DialectConfig{}, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
// Store queries never contain a literal ?.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
