package metrics

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all application metrics. Each instance owns its registry, so
// a CLI run only ever pushes what it recorded itself.
type Metrics struct {
	registry *prometheus.Registry

	// API metrics
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiRequestErrors   *prometheus.CounterVec

	// Audit store metrics
	dbOperationsTotal   *prometheus.CounterVec
	dbOperationDuration *prometheus.HistogramVec

	// Command metrics
	commandsTotal   *prometheus.CounterVec
	resultsReturned *prometheus.CounterVec

	// System metrics
	memoryUsage    *prometheus.GaugeVec
	goroutineCount prometheus.Gauge
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		apiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "censys_cli_api_requests_total",
				Help: "Total number of Censys API requests",
			},
			[]string{"endpoint", "status_code"},
		),
		apiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "censys_cli_api_request_duration_seconds",
				Help:    "Censys API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		apiRequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "censys_cli_api_request_errors_total",
				Help: "Total number of Censys API request errors",
			},
			[]string{"endpoint", "error_type"},
		),

		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "censys_cli_audit_operations_total",
				Help: "Total number of audit store operations",
			},
			[]string{"operation", "outcome"},
		),
		dbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "censys_cli_audit_operation_duration_seconds",
				Help:    "Audit store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "censys_cli_commands_total",
				Help: "Total number of commands run",
			},
			[]string{"command", "outcome"},
		),
		resultsReturned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "censys_cli_results_returned_total",
				Help: "Total number of hits or buckets returned",
			},
			[]string{"command"},
		),

		memoryUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "censys_cli_memory_usage_bytes",
				Help: "Memory usage in bytes",
			},
			[]string{"type"},
		),
		goroutineCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "censys_cli_goroutines",
				Help: "Number of goroutines",
			},
		),
	}
}

// ObserveRequest records an API request. A status code of 0 means no
// response was received.
func (m *Metrics) ObserveRequest(endpoint string, statusCode int, duration time.Duration) {
	m.apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAPIError records an API error
func (m *Metrics) RecordAPIError(endpoint, errorType string) {
	m.apiRequestErrors.WithLabelValues(endpoint, errorType).Inc()
}

// RecordDatabaseOperation records an audit store operation
func (m *Metrics) RecordDatabaseOperation(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.dbOperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.dbOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCommand records a finished command
func (m *Metrics) RecordCommand(command string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordResults records the number of hits or buckets a command returned
func (m *Metrics) RecordResults(command string, count int) {
	m.resultsReturned.WithLabelValues(command).Add(float64(count))
}

// UpdateSystemMetrics updates system metrics
func (m *Metrics) UpdateSystemMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.memoryUsage.WithLabelValues("alloc").Set(float64(memStats.Alloc))
	m.memoryUsage.WithLabelValues("sys").Set(float64(memStats.Sys))
	m.memoryUsage.WithLabelValues("heap_alloc").Set(float64(memStats.HeapAlloc))

	m.goroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Push sends everything recorded so far to a Prometheus Pushgateway
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	m.UpdateSystemMetrics()

	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
