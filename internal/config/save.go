package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/atmark-dev/atmark/internal/atomicfile"
)

// persistedConfig keeps optional fields out of the file when unset.
type persistedConfig struct {
	Vault                *string `toml:"vault,omitempty"`
	DebugMode            bool    `toml:"debug_mode"`
	AutoUpdateProperties bool    `toml:"auto_update_properties"`
	PropertiesFieldName  *string `toml:"properties_field_name,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		Vault:                nonEmptyPtr(cfg.Vault),
		DebugMode:            cfg.DebugMode,
		AutoUpdateProperties: cfg.AutoUpdateProperties,
		PropertiesFieldName:  nonEmptyPtr(cfg.PropertiesFieldName),
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
