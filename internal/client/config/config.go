package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
	DriverMemory   = "memory"
)

// UserConfig describes one account known to the login directory. Either
// Password (hashed at start-up) or PasswordHash (bcrypt) must be set.
type UserConfig struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Config holds runtime settings for the fieldkeeper CLI.
type Config struct {
	StoreDriver string
	StoreDSN    string

	KeyFile    string
	Passphrase string
	KDFSalt    string

	TokenSecret string
	TokenTTL    time.Duration

	ReportDir      string
	ReportPrefix   string
	ReportTimezone string
	AutoReport     bool

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// UploadURL, when set, receives every report with an HTTP PUT.
	UploadURL string

	LogLevel string

	Users []UserConfig
}

// LoadDefaults populates c with development defaults, including the two
// demo accounts.
func (c *Config) LoadDefaults() {
	c.StoreDriver = DriverSQLite
	c.StoreDSN = "fieldkeeper.db"
	c.KeyFile = ""
	c.Passphrase = "fieldkeeper-dev-passphrase"
	c.KDFSalt = "fieldkeeper-dev-salt"
	c.TokenSecret = "fieldkeeper-dev-token-secret"
	c.TokenTTL = 8 * time.Hour
	c.ReportDir = "reports"
	c.ReportPrefix = "Field_Report"
	c.ReportTimezone = "Local"
	c.AutoReport = false
	c.LogLevel = "info"
	c.Users = []UserConfig{
		{ID: "1", Name: "Admin User", Username: "admin", Role: "admin", Password: "password123"},
		{ID: "2", Name: "Test Employee", Username: "employee", Role: "employee", Password: "password123"},
	}
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Location resolves ReportTimezone.
func (c *Config) Location() (*time.Location, error) {
	if c.ReportTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("report timezone %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

// S3Enabled reports whether generated reports should also be uploaded.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres, DriverFile:
		if c.StoreDSN == "" {
			errs = append(errs, fmt.Errorf("store driver %s needs a dsn", c.StoreDriver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}

	if c.KeyFile == "" && c.Passphrase == "" {
		errs = append(errs, errors.New("either key file or passphrase is required"))
	}
	if c.KDFSalt == "" {
		errs = append(errs, errors.New("kdf salt is required"))
	}
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("token secret is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.ReportPrefix == "" {
		errs = append(errs, errors.New("report prefix is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]struct{}, len(c.Users))
	for i, u := range c.Users {
		if u.Username == "" || u.ID == "" {
			errs = append(errs, fmt.Errorf("user %d: id and username are required", i))
			continue
		}
		if _, dup := seen[u.Username]; dup {
			errs = append(errs, fmt.Errorf("user %q defined twice", u.Username))
		}
		seen[u.Username] = struct{}{}
		if u.Password == "" && u.PasswordHash == "" {
			errs = append(errs, fmt.Errorf("user %q: password or password_hash is required", u.Username))
		}
	}

	return errors.Join(errs...)
}
