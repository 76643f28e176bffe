package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	AccessToken     string         `yaml:"access_token" validate:"required"`
	HAAddress       string         `yaml:"ha_ip" validate:"required,hostname_port"`
	Secure          bool           `yaml:"secure"`
	CheckInterval   Duration       `yaml:"check_interval" validate:"gt=0"`
	RetryMultiplier int            `yaml:"retry_multiplier" validate:"gte=1"`
	RawJSONKeep     bool           `yaml:"raw_json_keep"`
	RawJSONPath     string         `yaml:"raw_json_path" validate:"required_if=RawJSONKeep true"`
	DebugLevel      string         `yaml:"debug_level" validate:"oneof=trace debug info warn warning error"`
	Rsyslog         string         `yaml:"rsyslog"`
	SweepAbsent     bool           `yaml:"sweep_absent"`
	Database        DatabaseConfig `yaml:"database"`
	HTTP            HTTPConfig     `yaml:"http"`
	Console         ConsoleConfig  `yaml:"console"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// HTTPConfig holds the read API settings
type HTTPConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port|startswith=:"`
}

// IsEnabled defaults to true when unset
func (c HTTPConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ConsoleConfig holds status line output settings
type ConsoleConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled defaults to true when unset
func (c ConsoleConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RetryDelay is how long to wait after a failed query or connection
func (c *Config) RetryDelay() time.Duration {
	return c.CheckInterval.Duration() * time.Duration(c.RetryMultiplier)
}

// WebsocketURL returns the hub's websocket endpoint
func (c *Config) WebsocketURL() string {
	scheme := "ws"
	if c.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/api/websocket", scheme, c.HAAddress)
}

// Duration wraps time.Duration for YAML unmarshaling. Bare numbers are
// read as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
