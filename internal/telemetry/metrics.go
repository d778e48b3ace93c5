/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReconcilePassesTotal counts reconciliation passes started.
	ReconcilePassesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrina_reconcile_passes_total",
		Help: "Reconciliation passes started.",
	})

	// ReconcileSkippedTicksTotal counts ticks skipped because a pass was running.
	ReconcileSkippedTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrina_reconcile_skipped_ticks_total",
		Help: "Timer ticks skipped while a previous pass was still running.",
	})

	// ReconcileTransitionsTotal counts applied status transitions by direction.
	ReconcileTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrina_reconcile_transitions_total",
		Help: "Store status transitions applied by reconciliation.",
	}, []string{"from", "to"})

	// ReconcileFailuresTotal counts per-store and pass-level failures by reason.
	ReconcileFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrina_reconcile_failures_total",
		Help: "Reconciliation failures by reason.",
	}, []string{"reason"})

	// ReconcilePassDuration observes full pass duration.
	ReconcilePassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vitrina_reconcile_pass_duration_seconds",
		Help:    "Duration of reconciliation passes.",
		Buckets: prometheus.DefBuckets,
	})

	// APIRequestsTotal counts HTTP requests.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrina_api_requests_total",
		Help: "HTTP requests handled.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vitrina_api_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vitrina_api_active_connections",
		Help: "In-flight HTTP requests.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
