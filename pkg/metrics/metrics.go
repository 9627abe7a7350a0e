/*
Copyright 2026 The Beam Operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes the operator's Prometheus metrics: how often
// each kind reconciles and to what result, how long a reconcile takes,
// and how often a resource exhausts its retry budget.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Kind labels a metric by which custom resource it describes.
const (
	KindBeamService         = "BeamService"
	KindBeamSqlStatementSet = "BeamSqlStatementSet"
)

// Result labels a reconcile outcome.
const (
	ResultSuccess = "success"
	ResultRequeue = "requeue"
	ResultError   = "error"
)

// Metrics holds the operator's Prometheus collectors.
type Metrics struct {
	ReconcileTotal       *prometheus.CounterVec
	ReconcileDuration    *prometheus.HistogramVec
	RetryExhaustionTotal *prometheus.CounterVec
}

// NewMetrics builds a Metrics registered against the default Prometheus
// registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry builds a Metrics registered against registerer,
// letting tests supply a fresh *prometheus.Registry to avoid duplicate
// registration panics across test runs.
func NewMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beam_reconcile_total",
			Help:      "Total reconcile attempts, by resource kind and result.",
		}, []string{"kind", "result"}),
		ReconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "beam_reconcile_duration_seconds",
			Help:      "Reconcile duration in seconds, by resource kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		RetryExhaustionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beam_retry_exhaustion_total",
			Help:      "Total times a resource exhausted its retry budget and was reset, by resource kind.",
		}, []string{"kind"}),
	}

	registerer.MustRegister(m.ReconcileTotal, m.ReconcileDuration, m.RetryExhaustionTotal)
	return m
}
