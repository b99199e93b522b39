// Package config loads the service configuration from YAML with environment
// overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	VLM    VLMConfig    `yaml:"vlm"`
	Parser ParserConfig `yaml:"parser"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Port         int `yaml:"port"`
	BodyLimitMB  int `yaml:"body_limit_mb"`
	ReadTimeout  int `yaml:"read_timeout_seconds"`
	WriteTimeout int `yaml:"write_timeout_seconds"`
}

// VLMConfig selects and locates the vision model backend.
// Provider is "none", "http", or "gemini".
type VLMConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// ParserConfig tunes the reconciliation engine.
type ParserConfig struct {
	Epsilon         float64 `yaml:"epsilon"`
	SwapThreshold   float64 `yaml:"swap_threshold"`
	CorrectionsPath string  `yaml:"corrections_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			BodyLimitMB:  50,
			ReadTimeout:  120,
			WriteTimeout: 120,
		},
		VLM: VLMConfig{
			Provider: "none",
			Endpoint: "http://localhost:8000",
		},
		Parser: ParserConfig{},
	}
}

// Load reads the YAML file at path, overlays it on the defaults, then applies
// environment overrides. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("VLM_PROVIDER"); v != "" {
		c.VLM.Provider = v
	}
	if v := os.Getenv("VLM_ENDPOINT"); v != "" {
		c.VLM.Endpoint = v
	}
	if v := os.Getenv("VLM_MODEL"); v != "" {
		c.VLM.Model = v
	}
	if v := os.Getenv("CORRECTIONS_PATH"); v != "" {
		c.Parser.CorrectionsPath = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	switch c.VLM.Provider {
	case "", "none", "http", "gemini":
	default:
		return fmt.Errorf("config: unknown vlm provider %q", c.VLM.Provider)
	}
	if c.Parser.Epsilon < 0 {
		return fmt.Errorf("config: epsilon must not be negative")
	}
	if c.Parser.SwapThreshold < 0 || c.Parser.SwapThreshold > 1 {
		return fmt.Errorf("config: swap threshold must be in [0,1]")
	}
	return nil
}
