package config

import (
	"flag"
	"os"

	"github.com/mkravets/jobvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   sandbox backup directory
//	-s string   SQLite DSN of the local database
//	-l string   log level (debug, info, warn, error)
//	-p string   cloud provider: drive, s3 or empty
//	-r int      max attempts for remote calls
//
// os.Args is first filtered to the flags handled here via flagx.FilterArgs
// to avoid collisions with other components' flags.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-l", "-p", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SandboxDir, "d", cfg.SandboxDir, "sandbox backup directory")
	fs.StringVar(&cfg.DatabaseDSN, "s", cfg.DatabaseDSN, "local database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.CloudProvider, "p", cfg.CloudProvider, "cloud provider (drive, s3)")
	fs.IntVar(&cfg.RetryMaxAttempts, "r", cfg.RetryMaxAttempts, "max attempts for remote calls")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
