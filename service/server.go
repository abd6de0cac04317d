package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stakepool/staking-pool/config"
	"github.com/stakepool/staking-pool/metrics"
)

// Server is the main daemon construct for the staking pool. It spins up the
// JSON API, the metrics server and the pool app, and tears them all down on
// shutdown.
type Server struct {
	started int32

	cfg    *config.Config
	logger *zap.Logger

	app       *PoolApp
	rpcServer *rpcServer

	quit chan struct{}
}

// NewPoolServer creates a new server with the given config.
func NewPoolServer(cfg *config.Config, l *zap.Logger, app *PoolApp) *Server {
	return &Server{
		cfg:       cfg,
		logger:    l,
		app:       app,
		rpcServer: newRPCServer(app, l),
		quit:      make(chan struct{}, 1),
	}
}

// RunUntilShutdown runs the main pool server loop until a signal is received
// to shut down the process.
func (s *Server) RunUntilShutdown() error {
	if atomic.AddInt32(&s.started, 1) != 1 {
		return nil
	}

	// Start the metrics server.
	promAddr, err := s.cfg.Metrics.Address()
	if err != nil {
		return fmt.Errorf("failed to get prometheus address: %w", err)
	}
	metricsServer := metrics.Start(promAddr, s.logger)

	defer func() {
		s.logger.Info("Shutdown complete")
	}()

	defer func() {
		metricsServer.Stop(context.Background())
		s.logger.Info("Metrics server stopped")
	}()

	if err := s.app.Start(); err != nil {
		return fmt.Errorf("failed to start the pool app: %w", err)
	}
	defer func() {
		if err := s.app.Stop(); err != nil {
			s.logger.Error("failed to stop the pool app", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", s.cfg.APIListener)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.APIListener, err)
	}

	apiServer := &http.Server{
		Handler:           s.rpcServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("JSON API server listening", zap.String("address", lis.Addr().String()))
		if err := apiServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("JSON API server exited", zap.Error(err))
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shut down the JSON API server", zap.Error(err))
		}
	}()

	s.logger.Info("Staking Pool Daemon is fully active!")

	// Wait for shutdown signal from either a graceful server stop or from
	// the interrupt handler.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		s.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-s.quit:
	}

	return nil
}

// Stop signals the server loop to shut down without an OS signal.
func (s *Server) Stop() {
	close(s.quit)
}
