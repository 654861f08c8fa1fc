package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/fieldkeeper/internal/flagx"
)

// parseFlags overrides cfg with the command-line flags it owns. Other
// arguments (including -c) are filtered out first.
//
//	-d string   store driver: sqlite, postgres, file, memory
//	-s string   store dsn: sqlite path, postgres dsn or directory
//	-k string   passphrase file
//	-o string   local report directory
//	-tz string  report timezone
//	-u string   report upload url
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-k", "-o", "-tz", "-u", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreDriver, "d", cfg.StoreDriver, "store driver (sqlite, postgres, file, memory)")
	fs.StringVar(&cfg.StoreDSN, "s", cfg.StoreDSN, "store dsn")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "file holding the encryption passphrase")
	fs.StringVar(&cfg.ReportDir, "o", cfg.ReportDir, "directory for generated reports")
	fs.StringVar(&cfg.ReportTimezone, "tz", cfg.ReportTimezone, "timezone used for report dates and names")
	fs.StringVar(&cfg.UploadURL, "u", cfg.UploadURL, "url that receives reports via HTTP PUT")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
