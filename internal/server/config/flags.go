package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-vpub       VAPID public key
//	-vpriv      VAPID private key
//	-vsub       VAPID subject (mailto: or https: URL)
//	-x string   cron secret guarding the check endpoint
//	-i int      reminder check interval, minutes
//	-n          disable the in-process scheduler
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-vpub", "-vpriv", "-vsub", "-x", "-i", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.VAPIDPublicKey, "vpub", config.VAPIDPublicKey, "VAPID public key")
	fs.StringVar(&config.VAPIDPrivateKey, "vpriv", config.VAPIDPrivateKey, "VAPID private key")
	fs.StringVar(&config.VAPIDSubject, "vsub", config.VAPIDSubject, "VAPID subject")
	fs.StringVar(&config.CronSecret, "x", config.CronSecret, "cron secret for the check endpoint")

	checkInterval := fs.Int("i", int(config.CheckInterval.Minutes()), "reminder check interval (in minutes)")
	noScheduler := fs.Bool("n", !config.EnableScheduler, "disable the in-process scheduler")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.CheckInterval = time.Duration(*checkInterval) * time.Minute
	config.EnableScheduler = !*noScheduler
}
