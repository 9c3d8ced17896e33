// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the KeepInTouch CLI.
//
// Fields:
//   - DatabasePath: path of the local JSON data file used before login.
//   - DatabaseDSN: PostgreSQL DSN of the shared backend; empty keeps the
//     client local-only.
//   - UserID: identity to act as after login.
//   - NotifyInterval: how often the client checks for due reminders.
type Config struct {
	DatabasePath   string
	DatabaseDSN    string
	UserID         string
	NotifyInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "keepintouch.json"
	c.NotifyInterval = 15 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
