package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"sandbox_dir":          "/data/backups",
		"database_dsn":         "vault.db",
		"cloud_provider":       "s3",
		"s3_bucket":            "field-backups",
		"token_refresh_margin": "90s",
		"retry_base_delay":     "250ms",
		"retry_max_attempts":   5,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "/data/backups", cfg.SandboxDir)
		assert.Equal(t, "vault.db", cfg.DatabaseDSN)
		assert.Equal(t, "s3", cfg.CloudProvider)
		assert.Equal(t, "field-backups", cfg.S3Bucket)
		assert.Equal(t, 90*time.Second, cfg.TokenRefreshMargin)
		assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
		assert.Equal(t, 5, cfg.RetryMaxAttempts)
	})

	t.Run("absent keys keep defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "JobVault Backups", cfg.DriveFolderName)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "backups", cfg.SandboxDir)
		assert.Equal(t, "jobvault.db", cfg.DatabaseDSN)
	})

	t.Run("panics on unreadable file", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(t.TempDir(), "missing.json")}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.Panics(t, func() { parseJson(cfg) })
	})
}
