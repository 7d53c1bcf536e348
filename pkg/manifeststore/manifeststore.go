package manifeststore

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/server"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
)

// Log formats accepted by NewLogger.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds all service configuration. It is built once at startup and
// not changed afterwards.
type Config struct {
	AppVersion string `yaml:"appVersion"`

	// HTTP configuration
	Route                 string `yaml:"route"`
	Port                  string `yaml:"port"`
	URIScheme             string `yaml:"uriScheme"`
	TrustForwardedHeaders bool   `yaml:"trustForwardedHeaders"`
	MaxBodyBytes          int64  `yaml:"maxBodyBytes"`

	// Storage configuration
	Backend  string           `yaml:"backend"`
	DataPath string           `yaml:"dataPath"`
	Workers  int              `yaml:"workers"`
	S3       storage.S3Config `yaml:"s3"`

	// Activity log configuration
	ActivityPath       string        `yaml:"activityPath"`
	LogRetentionDays   int           `yaml:"logRetentionDays"`
	LogCleanupInterval time.Duration `yaml:"logCleanupInterval"`

	MetricsEnabled bool   `yaml:"metricsEnabled"`
	LogFormat      string `yaml:"logFormat"`
}

func defaults() Config {
	return Config{
		AppVersion:         "dev",
		Route:              "/iiif-manifest-storage/api/manifests",
		Port:               "3001",
		URIScheme:          "https",
		MaxBodyBytes:       50 << 20,
		Backend:            storage.BackendFile,
		DataPath:           "data/manifests",
		Workers:            16,
		S3:                 storage.S3Config{UseSSL: true},
		ActivityPath:       "data/activity",
		LogRetentionDays:   7,
		LogCleanupInterval: 1 * time.Hour,
		MetricsEnabled:     true,
		LogFormat:          LogFormatConsole,
	}
}

// DefaultConfig returns a Config with default values overridden by the
// environment.
func DefaultConfig() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadConfig builds the configuration from defaults, then the YAML file
// named by CONFIG_FILE if set, then the environment.
func LoadConfig() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadConfigFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadConfigFile overlays the YAML document at path onto cfg. Keys absent
// from the file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: failed to parse config file %s: %w", apperrors.ErrInvalid, path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppVersion = getEnvOrDefault("VERSION", cfg.AppVersion)
	cfg.Route = getEnvOrDefault("APP_ROUTE", cfg.Route)
	cfg.DataPath = getEnvOrDefault("APP_DATA", cfg.DataPath)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.Backend = getEnvOrDefault("STORAGE_BACKEND", cfg.Backend)
	cfg.MaxBodyBytes = parseInt64OrDefault("MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.Workers = parseIntOrDefault("IO_WORKERS", cfg.Workers)
	cfg.URIScheme = getEnvOrDefault("URI_SCHEME", cfg.URIScheme)
	cfg.TrustForwardedHeaders = parseBoolOrDefault("TRUST_FORWARDED_HEADERS", cfg.TrustForwardedHeaders)
	cfg.ActivityPath = getEnvOrDefault("ACTIVITY_DATA_PATH", cfg.ActivityPath)
	cfg.LogRetentionDays = parseDaysOrDefault("LOG_RETENTION_DAYS", cfg.LogRetentionDays)
	cfg.LogCleanupInterval = parseDurationOrDefault("LOG_CLEANUP_INTERVAL", cfg.LogCleanupInterval)
	cfg.MetricsEnabled = parseBoolOrDefault("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	cfg.S3.Endpoint = getEnvOrDefault("S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.Bucket = getEnvOrDefault("S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.AccessKeyID = getEnvOrDefault("S3_ACCESS_KEY_ID", cfg.S3.AccessKeyID)
	cfg.S3.SecretAccessKey = getEnvOrDefault("S3_SECRET_ACCESS_KEY", cfg.S3.SecretAccessKey)
	cfg.S3.Region = getEnvOrDefault("S3_REGION", cfg.S3.Region)
	cfg.S3.Prefix = getEnvOrDefault("S3_PREFIX", cfg.S3.Prefix)
	cfg.S3.UseSSL = parseBoolOrDefault("S3_USE_SSL", cfg.S3.UseSSL)

	// ACTIVITY_DATA_PATH=off disables the activity log
	if strings.EqualFold(cfg.ActivityPath, "off") {
		cfg.ActivityPath = ""
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: Port cannot be empty", apperrors.ErrInvalid)
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: Port must be a number between 0 and 65535, got %q", apperrors.ErrInvalid, c.Port)
	}
	if !storage.ValidBackend(c.Backend) {
		return fmt.Errorf("%w: unknown storage backend %q (must be one of: file, memory, badger, s3)", apperrors.ErrInvalid, c.Backend)
	}
	switch strings.ToLower(c.Backend) {
	case storage.BackendFile, storage.BackendBadger:
		if c.DataPath == "" {
			return fmt.Errorf("%w: DataPath cannot be empty", apperrors.ErrInvalid)
		}
	case storage.BackendS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("%w: S3 endpoint and bucket are required", apperrors.ErrInvalid)
		}
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: MaxBodyBytes must be positive", apperrors.ErrInvalid)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: Workers must be positive", apperrors.ErrInvalid)
	}
	if s := strings.ToLower(c.URIScheme); s != "http" && s != "https" {
		return fmt.Errorf("%w: URIScheme must be http or https, got %q", apperrors.ErrInvalid, c.URIScheme)
	}
	if c.LogRetentionDays < 0 {
		return fmt.Errorf("%w: LogRetentionDays cannot be negative", apperrors.ErrInvalid)
	}
	if c.ActivityPath != "" && c.LogCleanupInterval <= 0 {
		return fmt.Errorf("%w: LogCleanupInterval must be positive", apperrors.ErrInvalid)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: LogFormat must be console or json, got %q", apperrors.ErrInvalid, c.LogFormat)
	}
	return nil
}

func (c *Config) serverConfig() *server.Config {
	return &server.Config{
		AppVersion:            c.AppVersion,
		Route:                 c.Route,
		DataPath:              c.DataPath,
		Port:                  c.Port,
		Backend:               c.Backend,
		MaxBodyBytes:          c.MaxBodyBytes,
		Workers:               c.Workers,
		URIScheme:             c.URIScheme,
		TrustForwardedHeaders: c.TrustForwardedHeaders,
		ActivityPath:          c.ActivityPath,
		LogRetentionDays:      c.LogRetentionDays,
		LogCleanupInterval:    c.LogCleanupInterval,
		MetricsEnabled:        c.MetricsEnabled,
		S3:                    c.S3,
	}
}

// NewLogger returns a zap backed logr.Logger. json selects the production
// encoder; anything else the development console encoder.
func NewLogger(format string) (logr.Logger, func(), error) {
	var (
		zapLog *zap.Logger
		err    error
	)
	if format == LogFormatJSON {
		zapLog, err = zap.NewProduction()
	} else {
		zapLog, err = zap.NewDevelopment()
	}
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("failed to create logger: %w", err)
	}
	return zapr.NewLogger(zapLog), func() { _ = zapLog.Sync() }, nil
}

// Run starts the service with the given configuration
// It handles the complete lifecycle: initialization, startup, and shutdown
func Run(ctx context.Context, cfg Config) error {
	logger, syncLogs, err := NewLogger(cfg.LogFormat)
	if err != nil {
		return err
	}
	defer syncLogs()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("Starting IIIF manifest store",
		"version", cfg.AppVersion,
		"backend", cfg.Backend,
		"route", cfg.Route,
		"activityLog", cfg.ActivityPath != "")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, err := server.NewServer(ctx, cfg.serverConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error(err, "failed to close server")
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := srv.WaitForShutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// parseDaysOrDefault reads a day count, accepting a "7d" suffix.
func parseDaysOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		if i, err := strconv.Atoi(days); err == nil {
			return i
		}
	}
	return parseIntOrDefault(key, defaultValue)
}

func parseInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
