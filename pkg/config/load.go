package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and environment
// variable overrides (EGG_* variables take precedence over the file), and
// retains the raw key set so deprecated-key checks can distinguish "absent"
// from "zero value".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.raw = raw
	cfg.path = path

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies EGG_SECTION_FIELD environment variables on top of
// the loaded file. Overridden keys are recorded in the raw map so IsSet sees them.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EGG_ENV"); v != "" {
		cfg.Env = v
		cfg.raw["env"] = v
	}
	if v := os.Getenv("EGG_KEYS"); v != "" {
		cfg.Keys = v
		cfg.raw["keys"] = v
	}
	if v := os.Getenv("EGG_RUNDIR"); v != "" {
		cfg.RunDir = v
		cfg.raw["rundir"] = v
	}
	if v := os.Getenv("EGG_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("EGG_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("EGG_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("EGG_SERVER_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
}
