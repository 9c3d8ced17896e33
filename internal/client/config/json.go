package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/flagx"
	"github.com/dmitrijs2005/keepintouch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "15m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabasePath   string         `json:"database_path"`
	DatabaseDSN    string         `json:"database_dsn"`
	UserID         string         `json:"user_id"`
	NotifyInterval timex.Duration `json:"notify_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags via
// flagx.JsonConfigFlags(); when empty, no JSON is loaded. Panics on read or
// unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.DatabasePath = jc.DatabasePath
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.UserID = jc.UserID
	cfg.NotifyInterval = time.Duration(jc.NotifyInterval.Duration)
}
