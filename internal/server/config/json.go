package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accounts/internal/flagx"
	"github.com/dmitrijs2005/accounts/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "15m" strings and integer nanoseconds are accepted. Pointer fields
// distinguish "absent" from zero values.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	SigningAlgorithm             *string         `json:"signing_algorithm"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	TokenRateLimit               *float64        `json:"token_rate_limit"`
	TokenRateBurst               *int            `json:"token_rate_burst"`
	MaxBodyBytes                 *int64          `json:"max_body_bytes"`
	LogLevel                     *string         `json:"log_level"`
	RunMigrations                *bool           `json:"run_migrations"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// ACCOUNTS_CONFIG) onto config. Keys missing from the file keep their
// current value. An unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.SigningAlgorithm, c.SigningAlgorithm)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setIf(&config.TokenRateLimit, c.TokenRateLimit)
	setIf(&config.TokenRateBurst, c.TokenRateBurst)
	setIf(&config.MaxBodyBytes, c.MaxBodyBytes)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.RunMigrations, c.RunMigrations)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
