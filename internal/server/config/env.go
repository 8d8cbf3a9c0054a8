package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variable names recognised by ApplyEnv.
const (
	EnvHTTPAddr         = "ACCOUNTS_HTTP_ADDR"
	EnvGRPCAddr         = "ACCOUNTS_GRPC_ADDR"
	EnvDatabaseDSN      = "ACCOUNTS_DATABASE_DSN"
	EnvSecretKey        = "ACCOUNTS_SECRET_KEY"
	EnvSigningAlgorithm = "ACCOUNTS_SIGNING_ALGORITHM"
	EnvAccessTTL        = "ACCOUNTS_ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvRefreshTTL       = "ACCOUNTS_REFRESH_TOKEN_EXPIRE_HOURS"
	EnvTokenRateLimit   = "ACCOUNTS_TOKEN_RATE_LIMIT"
	EnvTokenRateBurst   = "ACCOUNTS_TOKEN_RATE_BURST"
	EnvMaxBodyBytes     = "ACCOUNTS_MAX_BODY_BYTES"
	EnvLogLevel         = "ACCOUNTS_LOG_LEVEL"
	EnvRunMigrations    = "ACCOUNTS_RUN_MIGRATIONS"
)

// ApplyEnv overlays variables found through lookup (normally os.LookupEnv)
// onto c. Token lifetimes are given in minutes (access) and hours (refresh).
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	str(EnvHTTPAddr, &c.EndpointAddrHTTP)
	str(EnvGRPCAddr, &c.EndpointAddrGRPC)
	str(EnvDatabaseDSN, &c.DatabaseDSN)
	str(EnvSecretKey, &c.SecretKey)
	str(EnvSigningAlgorithm, &c.SigningAlgorithm)
	str(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvAccessTTL); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAccessTTL, err)
		}
		c.AccessTokenValidityDuration = time.Duration(n) * time.Minute
	}
	if v, ok := lookup(EnvRefreshTTL); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRefreshTTL, err)
		}
		c.RefreshTokenValidityDuration = time.Duration(n) * time.Hour
	}
	if v, ok := lookup(EnvTokenRateLimit); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTokenRateLimit, err)
		}
		c.TokenRateLimit = f
	}
	if v, ok := lookup(EnvTokenRateBurst); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTokenRateBurst, err)
		}
		c.TokenRateBurst = n
	}
	if v, ok := lookup(EnvMaxBodyBytes); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxBodyBytes, err)
		}
		c.MaxBodyBytes = n
	}
	if v, ok := lookup(EnvRunMigrations); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRunMigrations, err)
		}
		c.RunMigrations = b
	}

	return nil
}
