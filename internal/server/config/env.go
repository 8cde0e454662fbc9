package config

import "github.com/caarlos0/env/v11"

// EnvPrefix is prepended to every variable name declared in Config tags.
const EnvPrefix = "STARTERKIT_"

// parseEnv overlays variables that are set. Unset variables keep the value
// from the previous layer. Malformed values panic, like the other layers.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
