// Package config reads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Database types accepted in CRUMBS_DB_TYPE.
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMySQL    = "mysql"
)

// Config holds application configuration.
type Config struct {
	DatabaseType string // sqlite, postgres or mysql
	DatabasePath string // SQLite file
	DatabaseURL  string // PostgreSQL/MySQL DSN
	CatalogPath  string // empty selects the embedded catalog
	LogLevel     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		DatabaseType: strings.ToLower(getEnv("CRUMBS_DB_TYPE", DatabaseSQLite)),
		DatabasePath: getEnv("CRUMBS_DB_PATH", "./crumbs.db"),
		DatabaseURL:  getEnv("CRUMBS_DB_URL", ""),
		CatalogPath:  getEnv("CRUMBS_CATALOG", ""),
		LogLevel:     getEnv("CRUMBS_LOG_LEVEL", "info"),
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case DatabaseSQLite, "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("CRUMBS_DB_PATH is required for sqlite")
		}
	case DatabasePostgres, "postgresql", DatabaseMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("CRUMBS_DB_URL is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty value is Info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
