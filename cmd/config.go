package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configFormats = []string{"yaml", "json"}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
		Long: `Inspect the configuration after flags, VOCADOU_* environment variables,
the config file and defaults have been merged.

Examples:
  vocadou config show                  # Show current configuration
  vocadou config show -f json
  vocadou config validate              # Validate current configuration
  vocadou config validate --config prod.yml`,
	}

	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateFormat(format, configFormats); err != nil {
				return err
			}
			cfg, _, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", used)
			}
			if strings.ToLower(format) == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
	addFormatFlag(showCmd, &format, configFormats)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadConfig(cmd, v); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
			return nil
		},
	}

	// bare "vocadou config" shows the configuration
	configCmd.Args = cobra.NoArgs
	configCmd.RunE = showCmd.RunE
	addFormatFlag(configCmd, &format, configFormats)

	configCmd.AddCommand(showCmd, validateCmd)
	return configCmd
}
