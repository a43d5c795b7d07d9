// Package config provides configuration loading and defaults for the gqlq
// command.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EndpointConfig holds connection details for a GraphQL endpoint.
type EndpointConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	// Timeout is the HTTP request timeout in seconds. Zero means no timeout.
	Timeout int `yaml:"timeout"`
}

// AuditConfig controls the JSON-lines call log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// Config is the top-level configuration structure for gqlq.
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Audit    AuditConfig    `yaml:"audit"`
	Verbose  bool           `yaml:"verbose"`
}

// LoadConfig reads and parses a YAML configuration file from the given path.
// On error, nil is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a new Config populated with default values. Each
// call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			Timeout: 30,
		},
	}
}

// ApplyEnvOverrides updates cfg in place with values from environment
// variables. Recognized variables:
//   - GQLQ_ENDPOINT overrides cfg.Endpoint.URL
//   - GQLQ_TOKEN sets an Authorization: Bearer header
//   - GQLQ_TIMEOUT overrides cfg.Endpoint.Timeout (seconds)
//   - GQLQ_AUDIT_LOG sets cfg.Audit.LogPath and enables auditing
//
// A GQLQ_TIMEOUT value that does not parse as a non-negative integer is
// ignored.
func ApplyEnvOverrides(cfg *Config) {
	if url := os.Getenv("GQLQ_ENDPOINT"); url != "" {
		cfg.Endpoint.URL = url
	}
	if token := os.Getenv("GQLQ_TOKEN"); token != "" {
		if cfg.Endpoint.Headers == nil {
			cfg.Endpoint.Headers = make(map[string]string)
		}
		cfg.Endpoint.Headers["Authorization"] = "Bearer " + token
	}
	if raw := os.Getenv("GQLQ_TIMEOUT"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds >= 0 {
			cfg.Endpoint.Timeout = seconds
		}
	}
	if path := os.Getenv("GQLQ_AUDIT_LOG"); path != "" {
		cfg.Audit.Enabled = true
		cfg.Audit.LogPath = path
	}
}
