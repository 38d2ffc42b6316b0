// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/mediavault/internal/models"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	LoginAttemptsTotal *prometheus.CounterVec
	GateRejectsTotal   *prometheus.CounterVec

	// Catalog metrics
	AssetsStoredTotal       *prometheus.CounterVec
	AssetBytesStoredTotal   *prometheus.CounterVec
	AssetsDeletedTotal      *prometheus.CounterVec
	ReconciliationGapsTotal *prometheus.CounterVec
	StorageDiskBytes        prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mediavault_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		GateRejectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_gate_rejects_total",
				Help: "Requests rejected before reaching a handler, by the gate state they stopped in",
			},
			[]string{"state"},
		),

		AssetsStoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_assets_stored_total",
				Help: "Assets uploaded and cataloged",
			},
			[]string{"kind"},
		),
		AssetBytesStoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_asset_bytes_stored_total",
				Help: "Bytes written for uploaded assets",
			},
			[]string{"kind"},
		),
		AssetsDeletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_assets_deleted_total",
				Help: "Assets removed from the catalog",
			},
			[]string{"kind"},
		),
		ReconciliationGapsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediavault_reconciliation_gaps_total",
				Help: "Times the catalog and the disk disagreed after an operation",
			},
			[]string{"operation"},
		),
		StorageDiskBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mediavault_storage_disk_bytes",
				Help: "Bytes used under the storage root, as last measured",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginAttemptsTotal,
		m.GateRejectsTotal,
		m.AssetsStoredTotal,
		m.AssetBytesStoredTotal,
		m.AssetsDeletedTotal,
		m.ReconciliationGapsTotal,
		m.StorageDiskBytes,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AssetStored(kind models.Kind, bytes int64) {
	m.AssetsStoredTotal.WithLabelValues(string(kind)).Inc()
	m.AssetBytesStoredTotal.WithLabelValues(string(kind)).Add(float64(bytes))
}

func (m *Metrics) AssetDeleted(kind models.Kind) {
	m.AssetsDeletedTotal.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ReconciliationGap(op string) {
	m.ReconciliationGapsTotal.WithLabelValues(op).Inc()
}

// LoginAttempt counts a login by outcome: "success", "rejected" or "error".
func (m *Metrics) LoginAttempt(outcome string) {
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// GateRejected counts a request stopped by the endpoint gate.
func (m *Metrics) GateRejected(state string) {
	m.GateRejectsTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) SetDiskUsage(bytes int64) {
	m.StorageDiskBytes.Set(float64(bytes))
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
