// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DecisionActionKey = "scan.decision.action"
	DecisionReasonKey = "scan.decision.reason"

	// DecisionsMetric counts scan decisions by action and reason.
	DecisionsMetric = "sportsdvr_scan_decisions_total"
)

// DecisionCount is the number of decisions one run made for an action and reason.
type DecisionCount struct {
	Action string
	Reason string
	Count  int64
}

// RecordDecisions adds the decision counts of one run to the global meter
// provider and as an event on the active span. The provider is looked up per
// call so a provider installed after startup is honored.
func RecordDecisions(ctx context.Context, counts []DecisionCount) {
	if len(counts) == 0 {
		return
	}
	counter, err := otel.GetMeterProvider().Meter("sportsdvr/dvr").Int64Counter(DecisionsMetric,
		metric.WithDescription("Scan decisions by action and reason"))
	if err != nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	for _, c := range counts {
		attrs := []attribute.KeyValue{
			attribute.String(DecisionActionKey, c.Action),
			attribute.String(DecisionReasonKey, c.Reason),
		}
		counter.Add(ctx, c.Count, metric.WithAttributes(attrs...))
		span.AddEvent("scan.decisions", trace.WithAttributes(append(attrs, attribute.Int64("count", c.Count))...))
	}
}
