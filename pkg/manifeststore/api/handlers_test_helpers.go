package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
	testutil "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/testing"
)

const testRoute = "/iiif-manifest-storage/api/manifests"

func newTestHandler(t *testing.T, opts ...testHandlerOption) (*Handler, error) {
	t.Helper()
	logger := logr.Discard()

	cfg := testHandlerConfig{
		logger: logger,
		options: Options{
			Route:          testRoute,
			Version:        "test-version",
			MetricsEnabled: true,
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.backend == nil {
		cfg.backend = storage.NewMemoryBackend()
	}

	if cfg.eventStore == nil && !cfg.eventStoreSet {
		cfg.eventStore = testutil.NewTestEventStore(t)
	}

	service := testutil.NewTestService(t, cfg.backend, cfg.eventStore)
	return NewHandler(service, cfg.eventStore, cfg.logger, cfg.options)
}

type testHandlerConfig struct {
	logger        logr.Logger
	options       Options
	backend       storage.Backend
	eventStore    events.EventStorage
	eventStoreSet bool // Track if eventStore was explicitly set (even if nil)
}

type testHandlerOption func(*testHandlerConfig)

func WithTestBackend(backend storage.Backend) testHandlerOption {
	return func(cfg *testHandlerConfig) {
		cfg.backend = backend
	}
}

func WithTestEventStore(eventStore events.EventStorage) testHandlerOption {
	return func(cfg *testHandlerConfig) {
		cfg.eventStore = eventStore
		cfg.eventStoreSet = true
	}
}

func WithNilEventStore() testHandlerOption {
	return func(cfg *testHandlerConfig) {
		cfg.eventStore = nil
		cfg.eventStoreSet = true
	}
}

func WithTestOptions(fn func(*Options)) testHandlerOption {
	return func(cfg *testHandlerConfig) {
		fn(&cfg.options)
	}
}

func newTestRouter(t *testing.T, opts ...testHandlerOption) http.Handler {
	t.Helper()
	handler, err := newTestHandler(t, opts...)
	if err != nil {
		t.Fatalf("newTestHandler() error = %v", err)
	}
	return handler.SetupRoutes()
}

func setupTestHandlerWithEventStore(t *testing.T) (*Handler, events.EventStorage) {
	t.Helper()
	eventStore := testutil.NewTestEventStore(t)
	handler, err := newTestHandler(t, WithTestEventStore(eventStore))
	if err != nil {
		t.Fatalf("newTestHandler() error = %v", err)
	}
	return handler, eventStore
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = "example.org"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
