package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sentinelgate/gatekeep/internal/adapter/inbound/gateway"
	"github.com/sentinelgate/gatekeep/internal/adapter/outbound/memory"
	"github.com/sentinelgate/gatekeep/internal/config"
	"github.com/sentinelgate/gatekeep/internal/domain/auth"
	"github.com/sentinelgate/gatekeep/internal/domain/ratelimit"
	"github.com/sentinelgate/gatekeep/internal/domain/route"
	"github.com/sentinelgate/gatekeep/internal/metrics"
	"github.com/sentinelgate/gatekeep/internal/port/outbound"
	"github.com/sentinelgate/gatekeep/internal/telemetry"
)

// rateLimiter is the subset of the memory rate limiter implementations
// GatewayService needs beyond ratelimit.Limiter: background cleanup and an
// orderly way to stop it. Both MemoryRateLimiter and ShardedRateLimiter
// satisfy it.
type rateLimiter interface {
	ratelimit.Limiter
	StartCleanup(ctx context.Context, window time.Duration)
	Stop()
}

// GatewayService wires the data-plane proxy pipeline to a listener and
// runs it until the context is cancelled.
type GatewayService struct {
	addr            string
	handler         *gateway.Handler
	routes          *route.Table
	store           outbound.Store
	limiter         rateLimiter
	shutdownTimeout time.Duration
	shutdownTracer  func(context.Context) error
	logger          *slog.Logger
}

// NewGatewayService assembles the data plane: loads the route table from
// the store, seeds the auth validator's fingerprint set once from the
// union of config and store keys, and builds the proxy pipeline handler.
// The route refresh loop reloads routes only, not fingerprints.
func NewGatewayService(ctx context.Context, cfg *config.Config, store outbound.Store, m *metrics.Metrics, logger *slog.Logger) (*GatewayService, error) {
	routes := route.NewTable(nil)
	if err := routes.Load(ctx, store); err != nil {
		return nil, fmt.Errorf("loading route table: %w", err)
	}

	fingerprints := make([]string, 0, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		fingerprints = append(fingerprints, k.KeyHash)
	}
	storedKeys, err := store.GetAPIKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading api keys: %w", err)
	}
	for _, k := range storedKeys {
		fingerprints = append(fingerprints, k.KeyHash)
	}
	validator := auth.NewValidator(auth.NewConfig(cfg.Auth.Enabled, fingerprints))

	var limiter rateLimiter
	if cfg.RateLimit.Shards > 1 {
		limiter = memory.NewShardedRateLimiter(int(cfg.RateLimit.Shards), 300*time.Second)
	} else {
		limiter = memory.NewRateLimiter()
	}
	rateConfig := ratelimit.Config{
		MaxRequests: int(cfg.RateLimit.MaxRequests),
		Window:      time.Duration(cfg.RateLimit.WindowSecs) * time.Second,
	}
	limiter.StartCleanup(ctx, rateConfig.Window)

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	handler := gateway.New(routes, validator, limiter, rateConfig, m, timeout)
	handler.AccessLog = func(r *http.Request, status int, duration time.Duration, upstream string) {
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"upstream", upstream,
			"remote_addr", r.RemoteAddr,
		)
	}

	var shutdownTracer func(context.Context) error
	if cfg.Server.TraceEnabled {
		shutdown, err := telemetry.SetupTracing(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("setting up tracing: %w", err)
		}
		shutdownTracer = shutdown
		logger.Info("tracing enabled", "exporter", "stdout")
	}

	refreshInterval := time.Duration(cfg.RouteTable.RefreshIntervalSecs) * time.Second
	go route.RefreshLoop(ctx, routes, store, refreshInterval, func(err error) {
		logger.Error("route table refresh failed", "error", err)
	})

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSecs) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &GatewayService{
		addr:            fmt.Sprintf(":%d", cfg.Server.GatewayPort),
		handler:         handler,
		routes:          routes,
		store:           store,
		limiter:         limiter,
		shutdownTimeout: shutdownTimeout,
		shutdownTracer:  shutdownTracer,
		logger:          logger,
	}, nil
}

// Run starts the HTTP listener and blocks until ctx is cancelled, at
// which point it shuts the server down gracefully.
func (s *GatewayService) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.limiter.Stop()
		if s.shutdownTracer != nil {
			if tErr := s.shutdownTracer(shutdownCtx); tErr != nil {
				s.logger.Warn("tracer shutdown failed", "error", tErr)
			}
		}
		if err != nil {
			return fmt.Errorf("gateway shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
