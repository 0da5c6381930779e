package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv builds a config layer from LUMEN_* environment variables.
// Fields are mapped via the `env` tags on Config's nested types.
func parseEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}
