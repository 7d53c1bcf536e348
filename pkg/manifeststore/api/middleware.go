package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sebest/xff"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/metrics"
)

type contextKey string

const schemeCtxKey contextKey = "manifeststore.scheme"

// CORSMiddleware allows any origin and answers preflight requests directly.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,PUT,POST,DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HostDetection resolves the public host, scheme and client address of a
// request. Forwarded headers are only honoured when the handler trusts its
// proxy.
func (h *Handler) HostDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme := h.scheme
		if h.trustProxy {
			if host := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); host != "" {
				r.Host = host
			}
			switch proto := strings.ToLower(firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))); proto {
			case "http", "https":
				scheme = proto
			}
			if raddr := xff.GetRemoteAddr(r); raddr != "" {
				r.RemoteAddr = raddr
			}
		}

		ctx := context.WithValue(r.Context(), schemeCtxKey, scheme)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestScheme(r *http.Request, fallback string) string {
	if scheme, ok := r.Context().Value(schemeCtxKey).(string); ok && scheme != "" {
		return scheme
	}
	return fallback
}

func firstHeaderValue(value string) string {
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

// MetricsMiddleware records request counts and latency by route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HttpRequests.With(prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}).Inc()
		metrics.HttpResponseTime.With(prometheus.Labels{
			"method": r.Method,
			"route":  route,
		}).Observe(time.Since(start).Seconds())
	})
}
