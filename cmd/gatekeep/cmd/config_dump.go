package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sentinelgate/gatekeep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect gatekeep configuration",
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective configuration as YAML",
	Long: `Print the effective configuration as YAML: the config file merged
with GATEKEEP_* environment overrides and computed defaults, exactly as
the gateway and admin binaries load it.

The admin bearer token is redacted; only token_hash, if set, is shown.`,
	RunE: runConfigDump,
}

func init() {
	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigDump(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.SetDevDefaults()

	if cfg.Admin.Token != "" {
		cfg.Admin.Token = "***redacted***"
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
