package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/config"
)

var (
	configSetVault      string
	configSetDebug      string
	configSetAutoUpdate string
	configSetFieldName  string

	configUnsetFieldName bool
)

func loadConfigForEdit() (*config.Config, string, error) {
	path := config.DefaultPath()
	if strings.TrimSpace(configPath) != "" {
		path = configPath
	}

	loaded, err := config.Load()
	if strings.TrimSpace(configPath) != "" {
		loaded, err = config.LoadFrom(configPath)
	}
	if err != nil {
		return nil, "", err
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	return loaded, path, nil
}

func configData(cfg *config.Config, path string) map[string]interface{} {
	return map[string]interface{}{
		"config_path":            path,
		"vault":                  strings.TrimSpace(cfg.Vault),
		"debug_mode":             cfg.DebugMode,
		"auto_update_properties": cfg.AutoUpdateProperties,
		"properties_field_name":  cfg.FieldName(),
	}
}

func parseBoolFlag(name, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1":
		return true, nil
	case "false", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be true or false", name)
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global atmark config.toml settings",
	Long: `Manage global atmark config.toml settings.

Settings:
  vault                   path of the vault to operate on
  debug_mode              verbose logging to stderr
  auto_update_properties  write mention sets to frontmatter on change
  properties_field_name   frontmatter field to write (default "mentions")`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loaded, path, err := loadConfigForEdit()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	if isJSONOutput() {
		outputSuccess(configData(loaded, path), nil)
		return nil
	}

	fmt.Printf("config: %s\n", path)
	if v := strings.TrimSpace(loaded.Vault); v != "" {
		fmt.Printf("vault: %s\n", v)
	}
	fmt.Printf("debug_mode: %t\n", loaded.DebugMode)
	fmt.Printf("auto_update_properties: %t\n", loaded.AutoUpdateProperties)
	fmt.Printf("properties_field_name: %s\n", loaded.FieldName())
	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set one or more global config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, err := loadConfigForEdit()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		changed := make([]string, 0, 4)

		if cmd.Flags().Changed("vault") {
			value := strings.TrimSpace(configSetVault)
			if value == "" {
				return handleErrorMsg(ErrInvalidInput, "vault cannot be empty", "")
			}
			loaded.Vault = value
			changed = append(changed, "vault")
		}

		if cmd.Flags().Changed("debug-mode") {
			value, err := parseBoolFlag("debug-mode", configSetDebug)
			if err != nil {
				return handleErrorMsg(ErrInvalidInput, err.Error(), "")
			}
			loaded.DebugMode = value
			changed = append(changed, "debug_mode")
		}

		if cmd.Flags().Changed("auto-update-properties") {
			value, err := parseBoolFlag("auto-update-properties", configSetAutoUpdate)
			if err != nil {
				return handleErrorMsg(ErrInvalidInput, err.Error(), "")
			}
			loaded.AutoUpdateProperties = value
			changed = append(changed, "auto_update_properties")
		}

		if cmd.Flags().Changed("properties-field-name") {
			value := strings.TrimSpace(configSetFieldName)
			if value == "" {
				return handleErrorMsg(ErrInvalidInput,
					"properties-field-name cannot be empty; use 'atm config unset --properties-field-name' to restore the default", "")
			}
			loaded.PropertiesFieldName = value
			changed = append(changed, "properties_field_name")
		}

		if len(changed) == 0 {
			return handleErrorMsg(ErrInvalidInput, "no fields given; see 'atm config set --help'", "")
		}

		if err := config.SaveTo(path, loaded); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": path,
				"changed":     changed,
			}, nil)
			return nil
		}

		fmt.Printf("Updated %s: %s\n", path, strings.Join(changed, ", "))
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Clear optional global config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, err := loadConfigForEdit()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if !configUnsetFieldName {
			return handleErrorMsg(ErrInvalidInput, "no fields given; see 'atm config unset --help'", "")
		}

		loaded.PropertiesFieldName = ""
		if err := config.SaveTo(path, loaded); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": path,
				"changed":     []string{"properties_field_name"},
			}, nil)
			return nil
		}

		fmt.Printf("Updated %s: properties_field_name reset to %q\n", path, config.DefaultFieldName)
		return nil
	},
}

func init() {
	configSetCmd.Flags().StringVar(&configSetVault, "vault", "", "Path of the vault to operate on")
	configSetCmd.Flags().StringVar(&configSetDebug, "debug-mode", "", "Enable verbose logging (true/false)")
	configSetCmd.Flags().StringVar(&configSetAutoUpdate, "auto-update-properties", "", "Write mention sets to frontmatter on change (true/false)")
	configSetCmd.Flags().StringVar(&configSetFieldName, "properties-field-name", "", "Frontmatter field to write")

	configUnsetCmd.Flags().BoolVar(&configUnsetFieldName, "properties-field-name", false, "Restore the default field name")

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}
