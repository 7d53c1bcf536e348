package api

import "time"

// DefaultMaxBodyBytes caps request bodies at 50 MiB.
const DefaultMaxBodyBytes int64 = 50 << 20

// DefaultURIScheme is used when building manifest URIs.
const DefaultURIScheme = "https"

// DefaultRequestTimeout bounds manifest requests, including queued storage I/O.
const DefaultRequestTimeout = 30 * time.Second

// DefaultHealthCheckTimeout is the default timeout for health endpoints
const DefaultHealthCheckTimeout = 10 * time.Second

// Default and maximum page sizes for the activity log.
const (
	DefaultEventLimit = 100
	MaxEventLimit     = 1000
)
