package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/starterkit/internal/flagx"
	"github.com/dmitrijs2005/starterkit/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields let an
// absent key keep the default, durations accept "15m" or nanoseconds.
type JsonConfig struct {
	HTTPAddress                  *string         `json:"http_address"`
	GRPCAddress                  *string         `json:"grpc_address"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity"`
	PublicURL                    *string         `json:"public_url"`
	LogLevel                     *string         `json:"log_level"`
	LogFormat                    *string         `json:"log_format"`
	SMTPAddr                     *string         `json:"smtp_addr"`
	SMTPFrom                     *string         `json:"smtp_from"`
	SMTPUsername                 *string         `json:"smtp_username"`
	SMTPPassword                 *string         `json:"smtp_password"`
	RedisAddr                    *string         `json:"redis_addr"`
	AvatarURLCacheTTL            *timex.Duration `json:"avatar_url_cache_ttl"`
	CookieSecure                 *bool           `json:"cookie_secure"`
	CORSOrigins                  []string        `json:"cors_origins"`
	AuthRateLimit                *float64        `json:"auth_rate_limit"`
	AuthRateBurst                *int            `json:"auth_rate_burst"`
}

// parseJson loads the file named by -c/-config, if any, and copies the keys
// it contains into config. A missing or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
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
	setString(&config.HTTPAddress, c.HTTPAddress)
	setString(&config.GRPCAddress, c.GRPCAddress)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PublicURL, c.PublicURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.RedisAddr, c.RedisAddr)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.AvatarURLCacheTTL != nil {
		config.AvatarURLCacheTTL = c.AvatarURLCacheTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateBurst != nil {
		config.AuthRateBurst = *c.AuthRateBurst
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
