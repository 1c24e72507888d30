// Package cmd provides the CLI commands for gatekeep.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelgate/gatekeep/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gatekeep",
	Short: "gatekeep - two-plane HTTP reverse proxy",
	Long: `gatekeep is a two-plane HTTP reverse proxy: a data plane ("gateway")
that authenticates, rate-limits, and forwards client requests to upstream
origins, and a control plane ("admin") that exposes a bearer-token-gated
CRUD API over the route table and API-key table.

Configuration:
  Config is loaded from gatekeep.yaml in the current directory,
  $HOME/.gatekeep/, or /etc/gatekeep/.

  Environment variables can override config values with the GATEKEEP_
  prefix. Example: GATEKEEP_SERVER_GATEWAY_PORT=9090

Commands:
  gateway      Run the data-plane proxy
  admin        Run the control-plane API
  hash-key     Generate the SHA-256 fingerprint for an API key
  config dump  Print the effective configuration as YAML
  version      Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gatekeep.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
