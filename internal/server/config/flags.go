package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/drivenpass/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g., ":3000")
//	-d string        PostgreSQL DSN
//	-s string        JWT HMAC secret key
//	-k string        vault field encryption secret
//	-t int           access token validity, minutes
//	-x int           export download URL validity, minutes
//	-l string        log level (debug, info, warn, error)
//	-log-backend     slog or zap
//	-bcrypt-cost int bcrypt work factor
//	-rate int        sign-in attempts per minute per client, 0 disables
//	-u string        S3 root user
//	-p string        S3 root password
//	-b string        S3 bucket name, empty disables vault export
//	-g string        S3 region
//	-e string        S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is first narrowed with flagx.FilterArgs so the -c/-config flag
// consumed by parseJson does not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-k", "-t", "-x", "-l", "-log-backend", "-bcrypt-cost", "-rate",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CryptoSecret, "k", config.CryptoSecret, "vault field encryption secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	exportURLValidityDuration := fs.Int("x", int(config.ExportURLValidityDuration.Minutes()), "export_url_validity_duration (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend (slog|zap)")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.SignInRatePerMinute, "rate", config.SignInRatePerMinute, "sign-in attempts per minute per client")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.ExportURLValidityDuration = time.Duration(*exportURLValidityDuration) * time.Minute
}
