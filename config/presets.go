package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yllada/mullvadctl/common"
)

// FindPreset finds a preset by name (case-insensitive). If no name matches
// exactly, the first name in sorted order with the given prefix is used.
// It returns the preset's configured name along with it.
func (c *Config) FindPreset(name string) (string, Preset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", Preset{}, fmt.Errorf("%w: empty name", common.ErrPresetNotFound)
	}

	names := c.PresetNames()

	for _, n := range names {
		if strings.ToLower(n) == name {
			return n, c.Presets[n], nil
		}
	}

	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), name) {
			return n, c.Presets[n], nil
		}
	}

	return "", Preset{}, fmt.Errorf("%w: %s", common.ErrPresetNotFound, name)
}

// PresetNames returns the configured preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for n := range c.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
