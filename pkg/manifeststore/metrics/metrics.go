package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "manifest_http_requests_total",
	Help: "HTTP requests handled, by method, route pattern and status code.",
}, []string{"method", "route", "status"})
var HttpResponseTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "manifest_http_response_time_seconds",
	Help: "HTTP response latency.",
}, []string{"method", "route"})
var StorageOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "manifest_storage_operations_total",
	Help: "Storage backend operations, by backend, operation and result.",
}, []string{"backend", "operation", "result"})
var PoolRunning = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "manifest_pool_running_workers",
	Help: "Busy workers in the storage I/O queue.",
})

func init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(HttpResponseTime)
	prometheus.MustRegister(StorageOperations)
	prometheus.MustRegister(PoolRunning)
}

// ObserveStorage counts one backend operation. err decides the result label.
func ObserveStorage(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StorageOperations.WithLabelValues(backend, operation, result).Inc()
}
