package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/metrics"
)

// Start binds the listen address and serves in the background. Bind
// failures are returned directly.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.config.MetricsEnabled {
		queue := s.storage.Queue
		metrics.OnBeforeMetricsRequested(func() {
			metrics.PoolRunning.Set(float64(queue.Running()))
		})
	}

	if s.storage.EventStore != nil && s.config.LogCleanupInterval > 0 && s.config.LogRetentionDays > 0 {
		cleanupCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		s.mu.Lock()
		s.stopCleanup = cancel
		s.cleanupDone = done
		s.mu.Unlock()
		go func() {
			defer close(done)
			s.startLogCleanup(cleanupCtx)
		}()
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, "HTTP server error")
		}
	}()

	s.logger.Info("IIIF manifest store server is up",
		"port", s.config.Port,
		"addr", ln.Addr().String(),
		"route", s.handler.Route(),
		"backend", s.service.BackendName())
	return nil
}

func (s *Server) WaitForShutdown(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		s.logger.Info("Shutting down...")
		return s.Shutdown(context.Background())
	case <-ctx.Done():
		s.logger.Info("Shutting down due to context cancellation...")
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown stops accepting requests and waits for in-flight ones, then
// closes storage.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	s.logger.Info("Shutdown complete")
	return nil
}

func (s *Server) startLogCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.config.LogCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupEvents()
		}
	}
}

// stopLogCleanup cancels the retention loop and waits for a running pass
// to finish. Storage must not be closed before it returns.
func (s *Server) stopLogCleanup() {
	s.mu.Lock()
	cancel, done := s.stopCleanup, s.cleanupDone
	s.stopCleanup, s.cleanupDone = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Server) cleanupEvents() {
	before := time.Now().AddDate(0, 0, -s.config.LogRetentionDays)
	if err := s.storage.EventStore.CleanupOldEvents(before); err != nil {
		s.logger.Error(err, "failed to cleanup old events")
	}
}
