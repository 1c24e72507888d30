package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sentinelgate/gatekeep/internal/adapter/inbound/admin"
	"github.com/sentinelgate/gatekeep/internal/config"
	"github.com/sentinelgate/gatekeep/internal/metrics"
	"github.com/sentinelgate/gatekeep/internal/port/outbound"
)

// AdminService wires the control-plane CRUD API to a listener and runs
// it until the context is cancelled.
type AdminService struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewAdminService builds the admin API handler bound to the shared store.
func NewAdminService(cfg *config.Config, store outbound.Store, m *metrics.Metrics, logger *slog.Logger) *AdminService {
	h := admin.New(store, m, cfg.Admin.Token, cfg.Admin.TokenHash, admin.WithLogger(logger))
	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSecs) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &AdminService{
		addr:            fmt.Sprintf(":%d", cfg.Server.AdminPort),
		handler:         h.Routes(),
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run starts the HTTP listener and blocks until ctx is cancelled, at
// which point it shuts the server down gracefully.
func (s *AdminService) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin listening", "addr", s.addr)
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
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("admin shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
