package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	itemsCreated    prometheus.Counter
	statusChanges   *prometheus.CounterVec
	importOutcomes  *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "improvement_board",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "improvement_board",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "improvement_board",
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		itemsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "improvement_board",
			Name:      "items_created_total",
			Help:      "Improvement items created, including imports",
		}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "improvement_board",
			Name:      "item_status_changes_total",
			Help:      "Status transitions by target status",
		}, []string{"to"}),
		importOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "improvement_board",
			Name:      "import_rows_total",
			Help:      "Spreadsheet import rows by outcome",
		}, []string{"outcome"}),
	}
}

// RecordRequest observes a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(route, method, code).Inc()
}

// ItemCreated counts a new item.
func (m *Metrics) ItemCreated() {
	if m == nil {
		return
	}
	m.itemsCreated.Inc()
}

// StatusChanged counts a status transition.
func (m *Metrics) StatusChanged(to string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(to).Inc()
}

// ImportRows adds n rows to the given import outcome (created, skipped, failed).
func (m *Metrics) ImportRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importOutcomes.WithLabelValues(outcome).Add(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
