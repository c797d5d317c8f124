package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/designs2/attribute-tags/config"
	"github.com/designs2/attribute-tags/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or persist the configuration",
	Long: `Show or persist the tag engine configuration.

Configuration sources (in order of precedence):
1. Environment variables (TAGS_* prefix, e.g. TAGS_DATABASE_PATH)
2. Project config (./tags.toml, searched upward)
3. User config (~/.tags/config.toml)
4. System config (/etc/tags/config.toml)
5. Default values

Examples:
  tagsctl config show                  # Show effective configuration
  tagsctl config show --format yaml    # Show configuration as YAML
  tagsctl config save                  # Write it to ~/.tags/config.toml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Write the effective configuration as TOML",
	Long:  "Write the effective configuration to path (default ~/.tags/config.toml). An existing file is kept as <path>.back.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigSave,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSaveCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# tag engine configuration\n%s", string(data))
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# tag engine configuration\n%s", string(data))
	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runConfigSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	path := config.UserConfigPath()
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no home directory, pass a path")
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	pterm.Success.Printfln("Configuration written to %s", path)
	return nil
}
