package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	beforeMu               sync.Mutex
	beforeMetricsCalledFns []func()
)

// OnBeforeMetricsRequested registers fn to refresh gauges right before a
// scrape is served.
func OnBeforeMetricsRequested(fn func()) {
	beforeMu.Lock()
	defer beforeMu.Unlock()
	beforeMetricsCalledFns = append(beforeMetricsCalledFns, fn)
}

// Handler serves the default registry after running the scrape hooks.
func Handler() http.Handler {
	next := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		beforeMu.Lock()
		fns := append([]func(){}, beforeMetricsCalledFns...)
		beforeMu.Unlock()
		for _, fn := range fns {
			fn()
		}
		next.ServeHTTP(w, r)
	})
}
