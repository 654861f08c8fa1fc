package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, DriverSQLite, c.StoreDriver)
	assert.Equal(t, "fieldkeeper.db", c.StoreDSN)
	assert.Equal(t, 8*time.Hour, c.TokenTTL)
	assert.Equal(t, "Field_Report", c.ReportPrefix)
	assert.False(t, c.AutoReport)
	require.Len(t, c.Users, 2)
	assert.Equal(t, "admin", c.Users[0].Username)
	assert.Equal(t, "employee", c.Users[1].Username)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsWithoutArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "reports", cfg.ReportDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"memory needs no dsn", func(c *Config) { c.StoreDriver = DriverMemory; c.StoreDSN = "" }, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, `unknown store driver "mongo"`},
		{"file needs dsn", func(c *Config) { c.StoreDriver = DriverFile; c.StoreDSN = "" }, "needs a dsn"},
		{"no key material", func(c *Config) { c.Passphrase = "" }, "key file or passphrase"},
		{"bad timezone", func(c *Config) { c.ReportTimezone = "Mars/Olympus" }, "report timezone"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "token ttl"},
		{"duplicate user", func(c *Config) { c.Users = append(c.Users, c.Users[0]) }, "defined twice"},
		{"user without password", func(c *Config) { c.Users[0].Password = "" }, "password or password_hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	c := Config{ReportTimezone: "UTC"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	c.ReportTimezone = ""
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestS3Enabled(t *testing.T) {
	var c Config
	assert.False(t, c.S3Enabled())
	c.S3Bucket = "reports"
	assert.True(t, c.S3Enabled())
}
