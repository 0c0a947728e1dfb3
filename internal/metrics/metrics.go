package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	WebhookEventsTotal      *prometheus.CounterVec
	EntitlementDenialsTotal *prometheus.CounterVec
	AuditWriteFailuresTotal *prometheus.CounterVec
	ExportRowsTotal         *prometheus.CounterVec
	ImportedRowsTotal       *prometheus.CounterVec
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitalstack_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capitalstack_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitalstack_webhook_events_total",
				Help: "Billing webhook events by type and outcome",
			},
			[]string{"event", "outcome"},
		),
		EntitlementDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitalstack_entitlement_denials_total",
				Help: "Requests rejected for insufficient plan",
			},
			[]string{"operation"},
		),
		AuditWriteFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitalstack_audit_write_failures_total",
				Help: "Search or export history rows that failed to persist",
			},
			[]string{"kind"},
		),
		ExportRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitalstack_export_rows_total",
				Help: "Rows written to CSV exports",
			},
			[]string{"dataset"},
		),
		ImportedRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitalstack_imported_rows_total",
				Help: "Rows processed by the import tool",
			},
			[]string{"dataset", "outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WebhookEventsTotal,
		m.EntitlementDenialsTotal,
		m.AuditWriteFailuresTotal,
		m.ExportRowsTotal,
		m.ImportedRowsTotal,
	)

	return m
}

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Discard returns collectors registered nowhere, for tools and tests.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
