package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv(EnvEndpointAddrHTTP, ":7000")
	t.Setenv(EnvCryptoSecret, "env-crypto")
	t.Setenv(EnvAccessTokenValidityDuration, "2h")
	t.Setenv(EnvBcryptCost, "11")
	t.Setenv(EnvS3Bucket, "")

	cfg := &Config{S3Bucket: "vault", DatabaseDSN: "keep"}
	parseEnv(cfg)

	assert.Equal(t, ":7000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "env-crypto", cfg.CryptoSecret)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, "", cfg.S3Bucket, "set but empty disables export")
	assert.Equal(t, "keep", cfg.DatabaseDSN)
}

func Test_parseEnv_BadNumberPanics(t *testing.T) {
	t.Setenv(EnvSignInRatePerMinute, "many")
	require.Panics(t, func() { parseEnv(&Config{}) })
}
