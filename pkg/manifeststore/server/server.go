package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/api"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/manifest"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
)

// Config holds server configuration
type Config struct {
	AppVersion            string
	Route                 string
	DataPath              string
	Port                  string
	Backend               string
	MaxBodyBytes          int64
	Workers               int
	URIScheme             string
	TrustForwardedHeaders bool
	ActivityPath          string
	LogRetentionDays      int
	LogCleanupInterval    time.Duration
	MetricsEnabled        bool
	S3                    storage.S3Config
}

type Server struct {
	config     *Config
	logger     logr.Logger
	storage    *StorageComponents
	service    *manifest.Service
	handler    *api.Handler
	httpServer *http.Server

	mu          sync.Mutex
	listener    net.Listener
	stopCleanup context.CancelFunc
	cleanupDone chan struct{}
	closeOnce   sync.Once
	closeErr    error
}

// NewServer creates a new server instance. The storage backend is opened
// here; nothing listens until Start.
func NewServer(ctx context.Context, cfg *Config, logger logr.Logger) (*Server, error) {
	components, err := NewStorageComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	service := manifest.NewService(components.Backend, components.Queue, components.EventStore, logger)

	handler, err := api.NewHandler(service, components.EventStore, logger, api.Options{
		Route:                 cfg.Route,
		URIScheme:             cfg.URIScheme,
		TrustForwardedHeaders: cfg.TrustForwardedHeaders,
		MaxBodyBytes:          cfg.MaxBodyBytes,
		MetricsEnabled:        cfg.MetricsEnabled,
		Version:               cfg.AppVersion,
	})
	if err != nil {
		_ = components.Close()
		return nil, fmt.Errorf("failed to create handler: %w", err)
	}

	router := handler.SetupRoutes()
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	return &Server{
		config:     cfg,
		logger:     logger,
		storage:    components,
		service:    service,
		handler:    handler,
		httpServer: httpServer,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound listen address once Start has run.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Close releases the worker pool and closes the databases. It is safe to
// call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.stopLogCleanup()
		if s.storage != nil {
			s.closeErr = s.storage.Close()
		}
	})
	return s.closeErr
}
