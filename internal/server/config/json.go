package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/flagx"
	"github.com/dmitrijs2005/keepintouch/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	VAPIDPublicKey              string         `json:"vapid_public_key"`
	VAPIDPrivateKey             string         `json:"vapid_private_key"`
	VAPIDSubject                string         `json:"vapid_subject"`
	CronSecret                  string         `json:"cron_secret"`
	CheckInterval               timex.Duration `json:"check_interval"`
	EnableScheduler             *bool          `json:"enable_scheduler"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.VAPIDPublicKey = c.VAPIDPublicKey
	config.VAPIDPrivateKey = c.VAPIDPrivateKey
	config.VAPIDSubject = c.VAPIDSubject
	config.CronSecret = c.CronSecret
	config.CheckInterval = time.Duration(c.CheckInterval.Duration)
	if c.EnableScheduler != nil {
		config.EnableScheduler = *c.EnableScheduler
	}
}
