package objectstore

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment only. The first five fields are
// required, storage stays disabled until all of them are set.
type Config struct {
	Token           string `env:"R2_TOKEN"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"R2_ENDPOINT"`
	Bucket          string `env:"R2_BUCKET"`

	Region       string `env:"R2_REGION" envDefault:"auto"`
	UsePathStyle bool   `env:"R2_USE_PATH_STYLE" envDefault:"true"`
}

// LoadConfig parses the R2_* variables.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// Missing lists the names of required variables that are unset or blank,
// in declaration order.
func (c Config) Missing() []string {
	required := []struct {
		name  string
		value string
	}{
		{"R2_TOKEN", c.Token},
		{"R2_ACCESS_KEY_ID", c.AccessKeyID},
		{"R2_SECRET_ACCESS_KEY", c.SecretAccessKey},
		{"R2_ENDPOINT", c.Endpoint},
		{"R2_BUCKET", c.Bucket},
	}

	missing := []string{}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}
