// Package metrics exposes Prometheus metrics for the warm-storage client on a
// dedicated listener, separate from the API server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves the /metrics endpoint and owns the process registry.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server

	// RetrievalRequests counts piece fetch requests by outcome.
	RetrievalRequests *prometheus.CounterVec

	// SelectionRequests counts provider selection requests by outcome.
	SelectionRequests *prometheus.CounterVec
}

// New creates a metrics server bound to addr, registering the default Go and
// process collectors under the given namespace.
func New(namespace, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)

	m := &MetricsServer{
		registry: registry,
		RetrievalRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Piece fetch requests, labeled by outcome.",
		}, []string{"outcome"}),
		SelectionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_requests_total",
			Help:      "Provider selection requests, labeled by outcome.",
		}, []string{"outcome"}),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.srv = &http.Server{Addr: addr, Handler: mux}

	return m, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
