package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"store_driver":    "file",
		"store_dsn":       "/var/lib/fieldkeeper",
		"token_ttl":       "30m",
		"report_timezone": "UTC",
		"auto_report":     true,
		"s3_bucket":       "reports",
		"s3_region":       "eu-central-1",
		"upload_url":      "https://dav.example/reports",
		"users": []map[string]any{
			{"id": "7", "name": "Ops", "username": "ops", "role": "admin", "password_hash": "$2a$10$x"},
		},
	})

	t.Run("overlays only provided fields", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		want.StoreDriver = "file"
		want.StoreDSN = "/var/lib/fieldkeeper"
		want.TokenTTL = 30 * time.Minute
		want.ReportTimezone = "UTC"
		want.AutoReport = true
		want.S3Bucket = "reports"
		want.S3Region = "eu-central-1"
		want.UploadURL = "https://dav.example/reports"
		want.Users = []UserConfig{{ID: "7", Name: "Ops", Username: "ops", Role: "admin", PasswordHash: "$2a$10$x"}}

		parseJson(cfg)
		assert.Empty(t, cmp.Diff(&want, cfg))
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin", "-d", "memory"}

		cfg := &Config{StoreDriver: "sqlite", TokenTTL: time.Hour}
		parseJson(cfg)

		assert.Equal(t, "sqlite", cfg.StoreDriver)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
	})

	t.Run("auto_report false overrides true", func(t *testing.T) {
		off := writeTempJSON(t, dir, "off.json", map[string]any{"auto_report": false})
		os.Args = []string{"testbin", "-c", off}

		cfg := &Config{AutoReport: true}
		parseJson(cfg)
		assert.False(t, cfg.AutoReport)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestLoadConfig_FlagsBeatJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, t.TempDir(), "cfg.json", map[string]any{
		"store_driver": "file",
		"report_dir":   "from-json",
	})
	os.Args = []string{"testbin", "-c", path, "-o", "from-flag"}

	cfg := LoadConfig()
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "from-flag", cfg.ReportDir)
}
