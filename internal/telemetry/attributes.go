// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by scan spans.
const (
	ScanRunIDKey    = "scan.run_id"
	ScanTriggerKey  = "scan.trigger"
	ScanModeKey     = "scan.mode"
	ScanStatusKey   = "scan.status"
	ScanProgramsKey = "scan.programs"
	ScanMatchesKey  = "scan.matches"
	ScanGroupsKey   = "scan.groups"
	ScanAcceptedKey = "scan.scheduled"
	ScanUnfitKey    = "scan.unfit"

	HostKindKey      = "host.kind"
	HostOperationKey = "host.operation"
	HostChannelKey   = "host.channel"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ScanAttributes describes a scan run at start.
func ScanAttributes(runID, trigger, mode string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ScanRunIDKey, runID),
		attribute.String(ScanTriggerKey, trigger),
		attribute.String(ScanModeKey, mode),
	}
}

// ScanResultAttributes describes the outcome of a scan run.
func ScanResultAttributes(status string, programs, matches, groups, scheduled, unfit int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ScanStatusKey, status),
		attribute.Int(ScanProgramsKey, programs),
		attribute.Int(ScanMatchesKey, matches),
		attribute.Int(ScanGroupsKey, groups),
		attribute.Int(ScanAcceptedKey, scheduled),
		attribute.Int(ScanUnfitKey, unfit),
	}
}

// HostAttributes describes a call to the DVR host. Empty values are omitted.
func HostAttributes(kind, operation, channel string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if kind != "" {
		attrs = append(attrs, attribute.String(HostKindKey, kind))
	}
	if operation != "" {
		attrs = append(attrs, attribute.String(HostOperationKey, operation))
	}
	if channel != "" {
		attrs = append(attrs, attribute.String(HostChannelKey, channel))
	}
	return attrs
}

// ErrorAttributes marks a span as failed with a coarse error type.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

// RecordError records err on span and sets its status. A nil err is a no-op.
func RecordError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(ErrorAttributes(errorType)...)
}
