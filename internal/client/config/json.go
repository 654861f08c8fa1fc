package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fieldkeeper/internal/flagx"
	"github.com/dmitrijs2005/fieldkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Empty values leave the
// corresponding Config field untouched.
type JsonConfig struct {
	StoreDriver string `json:"store_driver"`
	StoreDSN    string `json:"store_dsn"`

	KeyFile    string `json:"key_file"`
	Passphrase string `json:"passphrase"`
	KDFSalt    string `json:"kdf_salt"`

	TokenSecret string         `json:"token_secret"`
	TokenTTL    timex.Duration `json:"token_ttl"`

	ReportDir      string `json:"report_dir"`
	ReportPrefix   string `json:"report_prefix"`
	ReportTimezone string `json:"report_timezone"`
	AutoReport     *bool  `json:"auto_report"`

	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`

	UploadURL string `json:"upload_url"`

	LogLevel string `json:"log_level"`

	Users []UserConfig `json:"users"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics when
// the file cannot be read or parsed.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.StoreDSN, jc.StoreDSN)
	setString(&cfg.KeyFile, jc.KeyFile)
	setString(&cfg.Passphrase, jc.Passphrase)
	setString(&cfg.KDFSalt, jc.KDFSalt)
	setString(&cfg.TokenSecret, jc.TokenSecret)
	if jc.TokenTTL.Duration != 0 {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	setString(&cfg.ReportDir, jc.ReportDir)
	setString(&cfg.ReportPrefix, jc.ReportPrefix)
	setString(&cfg.ReportTimezone, jc.ReportTimezone)
	if jc.AutoReport != nil {
		cfg.AutoReport = *jc.AutoReport
	}
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.UploadURL, jc.UploadURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	if len(jc.Users) > 0 {
		cfg.Users = jc.Users
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
