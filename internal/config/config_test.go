package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CRUMBS_DB_TYPE", "CRUMBS_DB_PATH", "CRUMBS_DB_URL", "CRUMBS_CATALOG", "CRUMBS_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, DatabaseSQLite, cfg.DatabaseType)
	assert.Equal(t, "./crumbs.db", cfg.DatabasePath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRUMBS_DB_TYPE", "Postgres")
	t.Setenv("CRUMBS_DB_URL", "postgres://localhost/crumbs?sslmode=disable")
	t.Setenv("CRUMBS_CATALOG", "/etc/crumbs/catalog.cue")
	t.Setenv("CRUMBS_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, DatabasePostgres, cfg.DatabaseType)
	assert.Equal(t, "postgres://localhost/crumbs?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "/etc/crumbs/catalog.cue", cfg.CatalogPath)
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "sqlite ok", cfg: Config{DatabaseType: "sqlite", DatabasePath: "x.db"}},
		{name: "sqlite3 alias", cfg: Config{DatabaseType: "sqlite3", DatabasePath: "x.db"}},
		{name: "sqlite without path", cfg: Config{DatabaseType: "sqlite"}, wantErr: "CRUMBS_DB_PATH"},
		{name: "mysql without url", cfg: Config{DatabaseType: "mysql"}, wantErr: "CRUMBS_DB_URL"},
		{name: "mysql ok", cfg: Config{DatabaseType: "mysql", DatabaseURL: "u:p@/db"}},
		{name: "unknown type", cfg: Config{DatabaseType: "oracle"}, wantErr: "unsupported database type"},
		{name: "bad level", cfg: Config{DatabaseType: "sqlite", DatabasePath: "x.db", LogLevel: "loud"}, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLevel_Empty(t *testing.T) {
	level, err := (&Config{}).Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
