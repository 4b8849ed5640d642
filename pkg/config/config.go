package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the client configuration for a sequencer gateway pair.
// The two endpoint URLs derive from BaseURL when not set explicitly; an
// explicit value wins but all three must stay internally consistent.
type Config struct {
	// BaseURL is the sequencer root, e.g. "https://alpha4.starknet.io".
	BaseURL string `yaml:"base_url"`

	// FeederGatewayURL is the read endpoint. Derived from BaseURL if empty.
	FeederGatewayURL string `yaml:"feeder_gateway_url"`

	// GatewayURL is the write endpoint. Derived from BaseURL if empty.
	GatewayURL string `yaml:"gateway_url"`

	// Timeout bounds a single HTTP exchange, not a confirmation wait.
	Timeout time.Duration `yaml:"timeout"`

	// RetryInterval is the default delay between status polls.
	RetryInterval time.Duration `yaml:"retry_interval"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Colors     bool   `yaml:"colors"`      // colored console output
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// Default returns a configuration with sane defaults and no endpoint set.
func Default() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		RetryInterval: 5 * time.Second,
		Logging: LoggingConfig{
			Level:  "info",
			Colors: true,
		},
	}
}

// Normalize derives the endpoint URLs from BaseURL and trims trailing
// slashes. Explicitly configured endpoint URLs are kept as-is.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.FeederGatewayURL = strings.TrimRight(strings.TrimSpace(c.FeederGatewayURL), "/")
	c.GatewayURL = strings.TrimRight(strings.TrimSpace(c.GatewayURL), "/")

	if c.BaseURL != "" {
		if c.FeederGatewayURL == "" {
			c.FeederGatewayURL = c.BaseURL + "/feeder_gateway"
		}
		if c.GatewayURL == "" {
			c.GatewayURL = c.BaseURL + "/gateway"
		}
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 5 * time.Second
	}
}

// Validate checks that both endpoints are present and well-formed.
// Callers should Normalize first.
func (c *Config) Validate() error {
	if c.FeederGatewayURL == "" {
		return fmt.Errorf("feeder gateway URL is required (set base_url or feeder_gateway_url)")
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("gateway URL is required (set base_url or gateway_url)")
	}

	for name, raw := range map[string]string{
		"feeder_gateway_url": c.FeederGatewayURL,
		"gateway_url":        c.GatewayURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid URL %q: %w", name, raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: unsupported scheme %q in %q", name, u.Scheme, raw)
		}
		if u.Host == "" {
			return fmt.Errorf("%s: missing host in %q", name, raw)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}

	return nil
}

// LoadFromFile reads a YAML config file, applies defaults, derives
// endpoints and validates the result.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	if err := DecodeStrict(f, cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// ForBaseURL builds a validated config from a single root URL.
func ForBaseURL(baseURL string) (*Config, error) {
	cfg := Default()
	cfg.BaseURL = baseURL
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
