package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/drivenpass/internal/flagx"
	"github.com/dmitrijs2005/drivenpass/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	CryptoSecret                string         `json:"crypto_secret"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	LogLevel                    string         `json:"log_level"`
	LogBackend                  string         `json:"log_backend"`
	SignInRatePerMinute         *int           `json:"sign_in_rate_per_minute"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    *string        `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	ExportURLValidityDuration   timex.Duration `json:"export_url_validity_duration"`
}

// parseJson overlays values from the JSON file named by -c/-config or
// $DRIVENPASS_CONFIG. Keys absent from the file keep their current value;
// s3_bucket and sign_in_rate_per_minute may be set to "" / 0 explicitly.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()

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

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CryptoSecret, c.CryptoSecret)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.SignInRatePerMinute != nil {
		config.SignInRatePerMinute = *c.SignInRatePerMinute
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ExportURLValidityDuration.Duration != 0 {
		config.ExportURLValidityDuration = c.ExportURLValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
