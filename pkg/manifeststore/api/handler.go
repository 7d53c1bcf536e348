package api

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/manifest"
)

// Options controls how the handler builds URIs and reads bodies.
type Options struct {
	// Route is the mount point of the manifest collection.
	Route string
	// URIScheme is used in returned manifest URIs unless a trusted
	// X-Forwarded-Proto header overrides it.
	URIScheme             string
	TrustForwardedHeaders bool
	MaxBodyBytes          int64
	MetricsEnabled        bool
	Version               string
}

type Handler struct {
	logger     logr.Logger
	service    *manifest.Service
	eventStore events.EventStorage
	route      string
	scheme     string
	trustProxy bool
	maxBody    int64
	metrics    bool
	version    string
}

func NewHandler(service *manifest.Service, eventStore events.EventStorage, logger logr.Logger, opts Options) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("%w: manifest service is required", apperrors.ErrInvalid)
	}

	scheme := strings.ToLower(strings.TrimSpace(opts.URIScheme))
	if scheme == "" {
		scheme = DefaultURIScheme
	}
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported URI scheme %q", apperrors.ErrInvalid, opts.URIScheme)
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Handler{
		logger:     logger,
		service:    service,
		eventStore: eventStore,
		route:      manifest.NormalizeRoute(opts.Route),
		scheme:     scheme,
		trustProxy: opts.TrustForwardedHeaders,
		maxBody:    maxBody,
		metrics:    opts.MetricsEnabled,
		version:    opts.Version,
	}, nil
}

// Route returns the normalized manifest collection path.
func (h *Handler) Route() string {
	return h.route
}
