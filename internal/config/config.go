// Package config provides configuration management for zhamesh.
//
// Config file locations (priority order):
//  1. $ZHAMESH_CONFIG
//  2. ./zhamesh.yaml
//  3. $XDG_CONFIG_HOME/zhamesh/config.yaml
//  4. ~/.config/zhamesh/config.yaml
//  5. /etc/zhamesh/config.yaml
//
// The access token may also come from $ZHAMESH_ACCESS_TOKEN, which wins
// over the file so the token can stay out of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvAccessToken overrides access_token
const EnvAccessToken = "ZHAMESH_ACCESS_TOKEN"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load finds and loads the config file, or falls back to defaults.
// The returned path is empty when no file was found.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// Parse decodes, defaults and validates YAML config data
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns defaults matching an empty config file
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.HAAddress == "" {
		c.HAAddress = "localhost:8123"
	}
	if c.CheckInterval == 0 {
		c.CheckInterval = Duration(5 * time.Second)
	}
	if c.RetryMultiplier == 0 {
		c.RetryMultiplier = 5
	}
	if c.RawJSONPath == "" {
		c.RawJSONPath = "./zhamesh.json"
	}
	c.DebugLevel = strings.ToLower(strings.TrimSpace(c.DebugLevel))
	if c.DebugLevel == "" {
		c.DebugLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./zhamesh.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
}

func (c *Config) applyEnv() {
	if token := os.Getenv(EnvAccessToken); token != "" {
		c.AccessToken = token
	}
}

// Validate checks the config against its struct tags
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Hub: %s, Interval: %s, Retry: %s\n",
		c.WebsocketURL(), c.CheckInterval.Duration(), c.RetryDelay())
	summary += fmt.Sprintf("Database: %s, Sweep absent: %v, Raw archive: %v",
		c.Database.Path, c.SweepAbsent, c.RawJSONKeep)
	if c.HTTP.IsEnabled() {
		summary += fmt.Sprintf(", HTTP: %s", c.HTTP.Addr)
	}
	return summary
}
