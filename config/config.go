// Package config provides configuration management for mullvadctl.
// It handles loading, saving, and validating application settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yllada/mullvadctl/common"
)

// Preset is a named relay selection.
type Preset struct {
	Country string `yaml:"country" validate:"required"`
	City    string `yaml:"city,omitempty" validate:"required_with=Server"`
	Server  string `yaml:"server,omitempty"`
}

// MonitorSettings configures the watch command.
type MonitorSettings struct {
	// Interval is how often status is checked.
	Interval time.Duration `yaml:"interval" default:"30s" validate:"gt=0"`
	// FailureThreshold is how many consecutive misses trigger a reconnect.
	FailureThreshold int `yaml:"failure_threshold" default:"3" validate:"min=1"`
	// AutoReconnect reconnects to the watched location when the tunnel drops.
	AutoReconnect bool `yaml:"auto_reconnect" default:"true"`
	// MaxReconnectAttempts bounds reconnects (0 = unlimited).
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts" default:"5" validate:"min=0"`
}

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// Binary is the name or path of the Mullvad client.
	Binary string `yaml:"binary" default:"mullvad" validate:"required"`
	// PollInterval is the delay between status polls after connecting.
	PollInterval time.Duration `yaml:"poll_interval" default:"500ms" validate:"gte=0"`
	// PollAttempts is how many delayed polls follow the first check.
	PollAttempts int `yaml:"poll_attempts" default:"21" validate:"min=0"`
	// DefaultCountry is used by connect when no location is given.
	DefaultCountry string `yaml:"default_country" default:"us" validate:"required"`
	// Notifications enables desktop notifications for connect outcomes.
	Notifications bool `yaml:"notifications" default:"true"`
	// History records connect attempts to a local journal.
	History bool `yaml:"history" default:"true"`
	// Presets maps names to relay selections.
	Presets map[string]Preset `yaml:"presets,omitempty" validate:"dive"`
	// Monitor configures the watch command.
	Monitor MonitorSettings `yaml:"monitor"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Only reachable if a default tag above is malformed.
		panic(err)
	}
	return cfg
}

// DefaultPath returns the default location of the config file.
func DefaultPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}

// Load loads the configuration from path and applies environment overrides.
// If the file doesn't exist, it creates one with default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := cfg.Save(path); err != nil {
			common.LogWarn("Could not write default configuration: %v", err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	default:
		defer file.Close()
		if err := cfg.decode(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", common.ErrConfigLoad, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode reads YAML on top of the current values. Fields missing from the
// document keep their defaults.
func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	return nil
}

// validate verifies that configuration values are valid.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			return fmt.Errorf("%w: %s failed %q (%d problems)",
				common.ErrInvalidConfig, first.Namespace(), first.Tag(), len(validationErrors))
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: creating config directory: %v", common.ErrConfigSave, err)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}
	encoder.Close()

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}
