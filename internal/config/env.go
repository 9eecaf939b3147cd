package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are read from the environment and win over the config file.
type envOverrides struct {
	BackendURL  string `env:"LEITOR_BACKEND_URL"`
	BackendKey  string `env:"LEITOR_BACKEND_KEY"`
	CacheDriver string `env:"LEITOR_CACHE_DRIVER"`
	CacheDir    string `env:"LEITOR_CACHE_DIR"`
	CacheTTL    string `env:"LEITOR_CACHE_TTL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := ParseEnv(&o); err != nil {
		return err
	}

	if o.BackendURL != "" {
		c.Backend.URL = o.BackendURL
	}
	if o.BackendKey != "" {
		c.Backend.APIKey = o.BackendKey
	}
	if o.CacheDriver != "" {
		c.Cache.Driver = o.CacheDriver
	}
	if o.CacheDir != "" {
		c.Cache.Dir = o.CacheDir
	}
	if o.CacheTTL != "" {
		c.Cache.TTL = o.CacheTTL
	}

	return nil
}
