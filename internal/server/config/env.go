package config

import (
	"errors"

	"github.com/dmitrijs2005/drivenpass/internal/flagx"
)

// Environment variables read by parseEnv.
const (
	EnvEndpointAddrHTTP            = "DRIVENPASS_ADDR"
	EnvDatabaseDSN                 = "DRIVENPASS_DATABASE_DSN"
	EnvSecretKey                   = "DRIVENPASS_JWT_SECRET"
	EnvCryptoSecret                = "DRIVENPASS_CRYPTO_SECRET"
	EnvAccessTokenValidityDuration = "DRIVENPASS_TOKEN_TTL"
	EnvBcryptCost                  = "DRIVENPASS_BCRYPT_COST"
	EnvLogLevel                    = "DRIVENPASS_LOG_LEVEL"
	EnvLogBackend                  = "DRIVENPASS_LOG_BACKEND"
	EnvSignInRatePerMinute         = "DRIVENPASS_SIGNIN_RATE"
	EnvS3RootUser                  = "DRIVENPASS_S3_USER"
	EnvS3RootPassword              = "DRIVENPASS_S3_PASSWORD"
	EnvS3Bucket                    = "DRIVENPASS_S3_BUCKET"
	EnvS3Region                    = "DRIVENPASS_S3_REGION"
	EnvS3BaseEndpoint              = "DRIVENPASS_S3_ENDPOINT"
	EnvExportURLValidityDuration   = "DRIVENPASS_EXPORT_URL_TTL"
)

// parseEnv overlays values from DRIVENPASS_* variables. Unparseable numbers
// or durations panic, like the other loaders.
func parseEnv(config *Config) {
	flagx.EnvString(EnvEndpointAddrHTTP, &config.EndpointAddrHTTP)
	flagx.EnvString(EnvDatabaseDSN, &config.DatabaseDSN)
	flagx.EnvString(EnvSecretKey, &config.SecretKey)
	flagx.EnvString(EnvCryptoSecret, &config.CryptoSecret)
	flagx.EnvString(EnvLogLevel, &config.LogLevel)
	flagx.EnvString(EnvLogBackend, &config.LogBackend)
	flagx.EnvString(EnvS3RootUser, &config.S3RootUser)
	flagx.EnvString(EnvS3RootPassword, &config.S3RootPassword)
	flagx.EnvString(EnvS3Bucket, &config.S3Bucket)
	flagx.EnvString(EnvS3Region, &config.S3Region)
	flagx.EnvString(EnvS3BaseEndpoint, &config.S3BaseEndpoint)

	err := errors.Join(
		flagx.EnvDuration(EnvAccessTokenValidityDuration, &config.AccessTokenValidityDuration),
		flagx.EnvInt(EnvBcryptCost, &config.BcryptCost),
		flagx.EnvInt(EnvSignInRatePerMinute, &config.SignInRatePerMinute),
		flagx.EnvDuration(EnvExportURLValidityDuration, &config.ExportURLValidityDuration),
	)
	if err != nil {
		panic(err)
	}
}
