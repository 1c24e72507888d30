package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sentinelgate/gatekeep/internal/adapter/outbound/sqlite"
	"github.com/sentinelgate/gatekeep/internal/config"
	"github.com/sentinelgate/gatekeep/internal/metrics"
	"github.com/sentinelgate/gatekeep/internal/service"
)

var gatewayDevMode bool

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the data-plane proxy",
	Long: `Run the gatekeep data plane: authenticate, rate-limit, route, and
forward client requests to upstream origins.`,
	RunE: runGateway,
}

func init() {
	gatewayCmd.Flags().BoolVar(&gatewayDevMode, "dev", false, "enable development mode (verbose logging, permissive defaults)")
	rootCmd.AddCommand(gatewayCmd)
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if gatewayDevMode {
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
	svc, err := service.NewGatewayService(ctx, cfg, store, m, logger)
	if err != nil {
		return fmt.Errorf("failed to build gateway service: %w", err)
	}

	if err := svc.Run(ctx); err != nil {
		return fmt.Errorf("gateway stopped with error: %w", err)
	}
	logger.Info("gateway stopped")
	return nil
}

// newLogger builds a stderr text logger. DevMode forces debug level
// regardless of the configured log_level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parseLogLevel converts a string log level to slog.Level. Returns
// slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
