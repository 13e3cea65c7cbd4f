// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the core service.
//
// Metrics cover the administrative surface: configuration updates, plugin
// registry mutations, and container status queries. They are exposed on
// the /metrics endpoint for Prometheus + Grafana.
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "platform"
const coreSubsystem = "core"

// CoreMetrics holds the Prometheus metrics of the core service.
// Initialize once at startup via NewCoreMetrics.
type CoreMetrics struct {
	// ConfigUpdatesTotal counts PATCH /api/config outcomes.
	// Labels: category, status (success, error)
	ConfigUpdatesTotal *prometheus.CounterVec

	// PluginOpsTotal counts plugin registry mutations.
	// Labels: operation (register, update, delete), status
	PluginOpsTotal *prometheus.CounterVec

	// ContainerQueriesTotal counts container status queries.
	// Labels: status (success, error)
	ContainerQueriesTotal *prometheus.CounterVec

	// ContainerQuerySeconds observes end-to-end status query latency,
	// including transport negotiation.
	ContainerQuerySeconds prometheus.Histogram
}

// NewCoreMetrics registers the core metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests to avoid duplicate registration panics.
func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	factory := promauto.With(reg)
	return &CoreMetrics{
		ConfigUpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: coreSubsystem,
			Name:      "config_updates_total",
			Help:      "Global configuration update attempts by category and outcome.",
		}, []string{"category", "status"}),

		PluginOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: coreSubsystem,
			Name:      "plugin_operations_total",
			Help:      "Plugin registry mutations by operation and outcome.",
		}, []string{"operation", "status"}),

		ContainerQueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: coreSubsystem,
			Name:      "container_queries_total",
			Help:      "Container status queries by outcome.",
		}, []string{"status"}),

		ContainerQuerySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: coreSubsystem,
			Name:      "container_query_seconds",
			Help:      "Container status query latency, including transport negotiation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
