// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"cmp"
	"slices"
	"time"

	"github.com/ManuGH/sportsdvr/internal/telemetry"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Decision actions.
const (
	ActionCreated   = "created"
	ActionSkipped   = "skipped"
	ActionConflict  = "conflict"
	ActionError     = "error"
	ActionUnfit     = "unfit"
	ActionCancelled = "cancelled"
)

// Error types.
const (
	ErrTypeFetchPrograms = "fetch_programs"
	ErrTypeFetchTimers   = "fetch_timers"
	ErrTypeCreateTimer   = "create_timer"
	ErrTypeCancelTimer   = "cancel_timer"
	ErrTypeLedger        = "ledger"
	ErrTypeCancelled     = "cancelled"
)

const (
	maxDecisions = 200
	maxErrors    = 50
)

// RunReport is the persisted outcome of one scan. Decision and error lists
// are bounded; overflow is counted, not stored.
type RunReport struct {
	RunID      string     `json:"run_id"`
	Trigger    string     `json:"trigger"`
	Mode       string     `json:"mode"`
	Strategy   string     `json:"strategy"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	DurationMs int64      `json:"duration_ms"`
	WindowFrom time.Time  `json:"window_from"`
	WindowTo   time.Time  `json:"window_to"`
	Status     string     `json:"status"`
	Summary    RunSummary `json:"summary"`

	Decisions        []RunDecision `json:"decisions,omitempty"`
	Errors           []RunError    `json:"errors,omitempty"`
	DecisionsDropped int           `json:"decisions_dropped,omitempty"`
	ErrorsDropped    int           `json:"errors_dropped,omitempty"`

	// outcomes counts every decision, including dropped ones.
	outcomes map[[2]string]int64
}

// RunSummary holds the pipeline counters.
type RunSummary struct {
	ProgramsScanned  int `json:"programs_scanned"`
	NotSports        int `json:"not_sports"`
	ClassifiedLikely int `json:"classified_likely"`
	Matched          int `json:"matched"`
	Groups           int `json:"groups"`
	SkippedExisting  int `json:"skipped_existing"`
	Scheduled        int `json:"scheduled"`
	Unfit            int `json:"unfit"`
	TimersCreated    int `json:"timers_created"`
	TimersConflicted int `json:"timers_conflicted"`
	TimersErrored    int `json:"timers_errored"`
	TimersCancelled  int `json:"timers_cancelled"`
	ExistingTimers   int `json:"existing_timers"`
	OwnedTimers      int `json:"owned_timers"`
}

// RunDecision explains what happened to one program or game group.
type RunDecision struct {
	ProgramID      string    `json:"program_id,omitempty"`
	ChannelID      string    `json:"channel_id,omitempty"`
	Title          string    `json:"title,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Action         string    `json:"action"`
	Reason         string    `json:"reason"`
	TimerID        string    `json:"timer_id,omitempty"`
	Details        string    `json:"details,omitempty"`
}

// RunError captures a non-fatal error encountered during the run.
type RunError struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
	Retryable bool      `json:"retryable"`
}

func (r *RunReport) addDecision(d RunDecision) {
	if r.outcomes == nil {
		r.outcomes = make(map[[2]string]int64)
	}
	r.outcomes[[2]string{d.Action, d.Reason}]++
	if len(r.Decisions) >= maxDecisions {
		r.DecisionsDropped++
		return
	}
	r.Decisions = append(r.Decisions, d)
}

func (r *RunReport) addError(typ string, err error, at time.Time, retryable bool) {
	if len(r.Errors) >= maxErrors {
		r.ErrorsDropped++
		return
	}
	r.Errors = append(r.Errors, RunError{Type: typ, Message: err.Error(), At: at, Retryable: retryable})
}

// HasErrors reports whether any error was recorded, stored or dropped.
func (r *RunReport) HasErrors() bool {
	return len(r.Errors) > 0 || r.ErrorsDropped > 0
}

// decisionCounts returns the per action and reason totals in a stable order.
func (r *RunReport) decisionCounts() []telemetry.DecisionCount {
	counts := make([]telemetry.DecisionCount, 0, len(r.outcomes))
	for k, n := range r.outcomes {
		counts = append(counts, telemetry.DecisionCount{Action: k[0], Reason: k[1], Count: n})
	}
	slices.SortFunc(counts, func(a, b telemetry.DecisionCount) int {
		return cmp.Or(cmp.Compare(a.Action, b.Action), cmp.Compare(a.Reason, b.Reason))
	})
	return counts
}
