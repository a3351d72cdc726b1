// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes the Prometheus collectors of the scan pipeline and
// its host adapters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsdvr_scans_total",
		Help: "Scan runs by trigger and final status",
	}, []string{"trigger", "status"}) // status=success|partial|skipped|failed

	scansRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsdvr_scans_rejected_total",
		Help: "Scan triggers rejected because another scan was in flight",
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsdvr_scan_duration_seconds",
		Help:    "Wall time of completed scan runs",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	lastScanTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsdvr_last_scan_timestamp_seconds",
		Help: "Unix time of the last finished scan",
	})

	programsScanned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsdvr_programs_scanned",
		Help: "Guide programs considered in the last scan",
	})

	matchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsdvr_match_decisions_total",
		Help: "Matcher decisions by reason",
	}, []string{"reason"})

	recordingsScheduled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsdvr_recordings_scheduled",
		Help: "Recordings accepted by the schedule builder in the last scan",
	})

	recordingsUnfit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportsdvr_recordings_unfit",
		Help: "Game groups that could not fit the concurrency cap in the last scan",
	})

	timerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsdvr_timer_operations_total",
		Help: "Host timer operations by kind and outcome",
	}, []string{"op", "outcome"}) // op=create|cancel, outcome=success|conflict|error
)

// RecordScan records one finished scan run.
func RecordScan(trigger, status string, d time.Duration) {
	scansTotal.WithLabelValues(trigger, status).Inc()
	scanDuration.Observe(d.Seconds())
	lastScanTimestamp.SetToCurrentTime()
}

// RecordScanRejected counts a trigger that found a scan in flight.
func RecordScanRejected() {
	scansRejected.Inc()
}

// SetScanResults publishes the pipeline counters of the last scan.
func SetScanResults(programs, scheduled, unfit int) {
	programsScanned.Set(float64(programs))
	recordingsScheduled.Set(float64(scheduled))
	recordingsUnfit.Set(float64(unfit))
}

// RecordMatchDecision counts one matcher decision.
func RecordMatchDecision(reason string) {
	matchesTotal.WithLabelValues(reason).Inc()
}

// RecordTimerOperation counts a timer create or cancel call.
func RecordTimerOperation(op, outcome string) {
	timerOperations.WithLabelValues(op, outcome).Inc()
}
