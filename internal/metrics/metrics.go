// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Package metrics provides Prometheus instrumentation for:
//   - API endpoint latency and throughput
//   - Database query performance (DuckDB)
//   - Document uploads and downloads
//   - Rate limit rejections
//
// Authorization decision metrics live in internal/authz next to the
// code that records them.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Database Metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Document Storage Metrics

	DocumentUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_uploads_total",
			Help: "Total number of document uploads",
		},
		[]string{"outcome"}, // "ok", "too_large", "bad_type", "error"
	)

	DocumentUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_upload_bytes",
			Help:    "Size distribution of uploaded documents",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
		},
	)

	DocumentDownloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "document_downloads_total",
			Help: "Total number of document downloads",
		},
	)

	// Application Info

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application build information",
		},
		[]string{"version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

var startTime = time.Now()

// RecordAPIRequest records an API request's outcome and latency.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records a database query's latency and error outcome.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordUpload records an upload outcome; size is observed only for
// successful uploads.
func RecordUpload(outcome string, size int64) {
	DocumentUploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		DocumentUploadBytes.Observe(float64(size))
	}
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo records the build version and resets the uptime baseline.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version).Set(1)
	UpdateUptime()
}

// UpdateUptime refreshes the uptime gauge.
func UpdateUptime() {
	AppUptime.Set(time.Since(startTime).Seconds())
}

// StatusLabel formats an HTTP status for the status_code label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
