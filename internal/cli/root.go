// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/config"
)

var (
	// Global flags
	vaultPathFlag string
	configPath    string

	// Resolved values
	resolvedVaultPath string
	cfg               *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "atm",
	Short: "Atmark - mention tracking for markdown notes",
	Long: `Atmark tracks @name mentions across a directory of markdown notes.

It indexes every mention, answers queries about where a name appears,
offers completion while you type, and mirrors each document's mention
set into its YAML frontmatter.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip vault resolution for commands that don't need it
		switch cmd.Name() {
		case "config", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "config") {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Resolve vault path: explicit flag > config
		if vaultPathFlag != "" {
			resolvedVaultPath = vaultPathFlag
		} else if v := strings.TrimSpace(cfg.Vault); v != "" {
			resolvedVaultPath = v
		} else {
			return fmt.Errorf(`no vault specified

Either:
  1. Use --vault-path /path/to/vault
  2. Run 'atm config set --vault /path/to/vault'`)
		}

		if _, err := os.Stat(resolvedVaultPath); os.IsNotExist(err) {
			return fmt.Errorf("vault not found: %s", resolvedVaultPath)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault-path", "", "Path to vault directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getVaultPath returns the resolved vault path.
func getVaultPath() string {
	return resolvedVaultPath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

func loadGlobalConfig() (*config.Config, error) {
	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}
	return loadedCfg, nil
}
