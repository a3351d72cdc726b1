// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hostRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsdvr_host_requests_total",
		Help: "Requests to the DVR host by operation and outcome",
	}, []string{"operation", "outcome"})

	hostRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sportsdvr_host_request_duration_seconds",
		Help:    "Latency of DVR host requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	epgChannelFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsdvr_epg_channel_failures_total",
		Help: "Per-channel guide fetches that failed and were skipped",
	})

	epgCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsdvr_epg_cache_lookups_total",
		Help: "Guide cache lookups by result",
	}, []string{"result"}) // result=hit|miss

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sportsdvr_circuit_breaker_state",
		Help: "1 for the current circuit breaker state of a component, 0 for the others",
	}, []string{"component", "state"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsdvr_circuit_breaker_transitions_total",
		Help: "Circuit breaker state changes by target state",
	}, []string{"component", "state"})
)

var breakerStates = [...]string{"closed", "half-open", "open"}

// RecordHostRequest records one host call.
func RecordHostRequest(operation, outcome string, seconds float64) {
	hostRequests.WithLabelValues(operation, outcome).Inc()
	hostRequestDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordEPGChannelFailure counts a skipped channel.
func RecordEPGChannelFailure() {
	epgChannelFailures.Inc()
}

// RecordEPGCacheLookup counts a guide cache hit or miss.
func RecordEPGCacheLookup(hit bool) {
	if hit {
		epgCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	epgCacheLookups.WithLabelValues("miss").Inc()
}

// SetCircuitBreakerState marks state as current for component and counts the
// transition.
func SetCircuitBreakerState(component, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		breakerState.WithLabelValues(component, s).Set(v)
	}
	breakerTransitions.WithLabelValues(component, state).Inc()
}
