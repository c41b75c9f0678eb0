// Package config handles global atmark configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultFieldName is the frontmatter field the mention set is mirrored to
// when properties_field_name is not set.
const DefaultFieldName = "mentions"

// Config represents the global atmark configuration.
type Config struct {
	// Vault is the path of the vault to operate on.
	Vault string `toml:"vault"`

	// DebugMode toggles verbose logging to stderr.
	DebugMode bool `toml:"debug_mode"`

	// AutoUpdateProperties enables the scheduled frontmatter sync on
	// document change events.
	AutoUpdateProperties bool `toml:"auto_update_properties"`

	// PropertiesFieldName overrides the frontmatter field written by the
	// sync. Empty falls back to DefaultFieldName.
	PropertiesFieldName string `toml:"properties_field_name"`
}

// FieldName returns the frontmatter field to write, applying the default.
func (c *Config) FieldName() string {
	name := strings.TrimSpace(c.PropertiesFieldName)
	if name == "" {
		return DefaultFieldName
	}
	return name
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/atmark/config.toml first (XDG style),
// then falls back to the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "atmark", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "atmark", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}
