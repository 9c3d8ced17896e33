package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path of the local data file (default from Config)
//	-d string   PostgreSQL DSN of the backend
//	-u string   user ID to act as after login
//	-i int      reminder check interval in minutes (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-d", "-u", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path of the local data file")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	notifyInterval := fs.Int("i", int(cfg.NotifyInterval.Minutes()), "reminder check interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.NotifyInterval = time.Duration(*notifyInterval) * time.Minute
}
