package config

import (
	"fmt"
	"time"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
)

// Builder provides a fluent interface for building service configuration.
type Builder struct {
	config manifeststore.Config
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		config: manifeststore.DefaultConfig(),
	}
}

// FromConfig starts a builder from an existing configuration, typically
// the result of manifeststore.LoadConfig.
func FromConfig(cfg manifeststore.Config) *Builder {
	return &Builder{config: cfg}
}

// WithAppVersion sets the application version.
func (b *Builder) WithAppVersion(version string) *Builder {
	b.config.AppVersion = version
	return b
}

// WithRoute sets the path the manifest collection is served under.
func (b *Builder) WithRoute(route string) *Builder {
	b.config.Route = route
	return b
}

// WithPort sets the HTTP server port.
func (b *Builder) WithPort(port string) *Builder {
	b.config.Port = port
	return b
}

// WithURIScheme sets the scheme of returned manifest URIs.
func (b *Builder) WithURIScheme(scheme string) *Builder {
	b.config.URIScheme = scheme
	return b
}

// WithTrustForwardedHeaders honours X-Forwarded-Host and X-Forwarded-Proto.
func (b *Builder) WithTrustForwardedHeaders(trust bool) *Builder {
	b.config.TrustForwardedHeaders = trust
	return b
}

// WithMaxBodyBytes caps request bodies.
func (b *Builder) WithMaxBodyBytes(n int64) *Builder {
	b.config.MaxBodyBytes = n
	return b
}

// WithBackend selects the storage backend.
func (b *Builder) WithBackend(backend string) *Builder {
	b.config.Backend = backend
	return b
}

// WithDataPath sets the data storage path.
func (b *Builder) WithDataPath(path string) *Builder {
	b.config.DataPath = path
	return b
}

// WithWorkers sets the size of the storage I/O pool.
func (b *Builder) WithWorkers(n int) *Builder {
	b.config.Workers = n
	return b
}

// WithS3 selects the S3 backend with the given bucket settings.
func (b *Builder) WithS3(s3 storage.S3Config) *Builder {
	b.config.Backend = storage.BackendS3
	b.config.S3 = s3
	return b
}

// WithActivityPath sets where the activity log is kept. An empty path
// disables it.
func (b *Builder) WithActivityPath(path string) *Builder {
	b.config.ActivityPath = path
	return b
}

// WithLogRetentionDays sets the log retention period in days.
func (b *Builder) WithLogRetentionDays(days int) *Builder {
	b.config.LogRetentionDays = days
	return b
}

// WithLogCleanupInterval sets the log cleanup interval.
func (b *Builder) WithLogCleanupInterval(interval time.Duration) *Builder {
	b.config.LogCleanupInterval = interval
	return b
}

// WithMetrics enables or disables the /metrics endpoint.
func (b *Builder) WithMetrics(enabled bool) *Builder {
	b.config.MetricsEnabled = enabled
	return b
}

// WithLogFormat selects console or json logs.
func (b *Builder) WithLogFormat(format string) *Builder {
	b.config.LogFormat = format
	return b
}

// Build returns the configured Config and validates it.
// Returns an error if validation fails.
func (b *Builder) Build() (manifeststore.Config, error) {
	if err := b.config.Validate(); err != nil {
		return manifeststore.Config{}, err
	}
	return b.config, nil
}

// MustBuild returns the configured Config and panics if validation fails.
func (b *Builder) MustBuild() manifeststore.Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg
}
