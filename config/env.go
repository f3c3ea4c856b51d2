package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yllada/mullvadctl/common"
)

// envOverrides mirrors the scalar settings that may be set from the
// environment, e.g. MULLVADCTL_POLL_ATTEMPTS=10. Unset variables stay nil.
type envOverrides struct {
	Binary         *string        `envconfig:"BINARY"`
	PollInterval   *time.Duration `envconfig:"POLL_INTERVAL"`
	PollAttempts   *int           `envconfig:"POLL_ATTEMPTS"`
	DefaultCountry *string        `envconfig:"DEFAULT_COUNTRY"`
	Notifications  *bool          `envconfig:"NOTIFICATIONS"`
	History        *bool          `envconfig:"HISTORY"`
}

func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := envconfig.Process(common.EnvPrefix, &ov); err != nil {
		return err
	}

	if ov.Binary != nil {
		c.Binary = *ov.Binary
	}
	if ov.PollInterval != nil {
		c.PollInterval = *ov.PollInterval
	}
	if ov.PollAttempts != nil {
		c.PollAttempts = *ov.PollAttempts
	}
	if ov.DefaultCountry != nil {
		c.DefaultCountry = *ov.DefaultCountry
	}
	if ov.Notifications != nil {
		c.Notifications = *ov.Notifications
	}
	if ov.History != nil {
		c.History = *ov.History
	}
	return nil
}

// LoadEnvFiles loads variables from dotenv files into the process
// environment without overriding variables that are already set.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
