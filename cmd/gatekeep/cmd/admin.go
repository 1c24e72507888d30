package cmd

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sentinelgate/gatekeep/internal/adapter/outbound/sqlite"
	"github.com/sentinelgate/gatekeep/internal/config"
	"github.com/sentinelgate/gatekeep/internal/metrics"
	"github.com/sentinelgate/gatekeep/internal/service"
)

var adminDevMode bool

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Run the control-plane API",
	Long: `Run the gatekeep control plane: a bearer-token-gated CRUD API over
the route table and API-key table.`,
	RunE: runAdmin,
}

func init() {
	adminCmd.Flags().BoolVar(&adminDevMode, "dev", false, "enable development mode (verbose logging, permissive defaults)")
	rootCmd.AddCommand(adminCmd)
}

func runAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if adminDevMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := newLogger(cfg)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	store, err := sqlite.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	m := metrics.New()
	svc := service.NewAdminService(cfg, store, m, logger)

	if err := svc.Run(ctx); err != nil {
		return fmt.Errorf("admin stopped with error: %w", err)
	}
	logger.Info("admin stopped")
	return nil
}
