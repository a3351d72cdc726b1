package dvr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dedup"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/metrics"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/schedule"
	"github.com/ManuGH/sportsdvr/internal/store"
	"github.com/ManuGH/sportsdvr/internal/subscription"
	"github.com/ManuGH/sportsdvr/internal/telemetry"
)

var (
	// ErrScanInProgress is returned when a scan is triggered while another
	// one is running, in this process or in another holding the lock file.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrInvalidMode is returned for an unknown scan mode override.
	ErrInvalidMode = errors.New("invalid scan mode")
)

// Scan triggers.
const (
	TriggerManual  = "manual"
	TriggerAPI     = "api"
	TriggerStartup = "startup"
	TriggerDaily   = "daily"
)

// LatestReportFile is the report file name inside the reports directory.
const LatestReportFile = "latest.json"

const notifyTimeout = 10 * time.Second

// RunRequest parameterizes one scan. An empty Mode uses the configured mode.
type RunRequest struct {
	Trigger string
	Mode    string
}

// Engine runs the scan pipeline against a host: classify, match, group,
// schedule and commit timers. At most one scan runs at a time.
type Engine struct {
	catalog  *Catalog
	host     Host
	ledger   store.Ledger
	notifier Notifier

	reportsDir string
	lockPath   string
	now        func() time.Time
	logger     zerolog.Logger
	tracer     trace.Tracer

	running sync.Mutex

	mu     sync.RWMutex
	latest *RunReport
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithNotifier publishes every finished report.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithReportsDir persists the latest report under dir.
func WithReportsDir(dir string) EngineOption {
	return func(e *Engine) { e.reportsDir = dir }
}

// WithLockFile guards scans across processes with an advisory file lock.
func WithLockFile(path string) EngineOption {
	return func(e *Engine) { e.lockPath = path }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a scan engine. ledger may be nil, in which case ownership
// relies on the overview marker and the heuristic only.
func NewEngine(catalog *Catalog, host Host, ledger store.Ledger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		host:    host,
		ledger:  ledger,
		now:     time.Now,
		logger:  log.WithComponent("dvr.engine"),
		tracer:  telemetry.Tracer("sportsdvr/dvr"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one scan. It returns ErrScanInProgress without waiting when
// another scan holds the guard. A failed scan returns its report together
// with the error.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	if !e.running.TryLock() {
		metrics.RecordScanRejected()
		return nil, ErrScanInProgress
	}
	defer e.running.Unlock()

	if e.lockPath != "" {
		unlock, err := e.lockFile()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	snap := e.catalog.Snapshot()
	mode := req.Mode
	if mode == "" {
		mode = snap.Mode
	}
	if mode != config.ModeIncremental && mode != config.ModeFull {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	now := e.now().UTC()
	report := &RunReport{
		RunID:      uuid.NewString(),
		Trigger:    trigger,
		Mode:       mode,
		Strategy:   string(snap.Strategy),
		StartedAt:  now,
		WindowFrom: now,
		WindowTo:   now.Add(snap.Lookahead),
	}
	ctx = log.ContextWithRunID(ctx, report.RunID)
	logger := e.logger.With().
		Str(log.FieldRunID, report.RunID).
		Str(log.FieldTrigger, trigger).
		Str(log.FieldMode, mode).
		Logger()

	ctx, span := e.tracer.Start(ctx, "scan", trace.WithAttributes(telemetry.ScanAttributes(report.RunID, trigger, mode)...))
	defer span.End()

	var runErr error
	switch {
	case !snap.Enabled && !isManual(trigger):
		report.Status = StatusSkipped
		logger.Info().Msg("scanning disabled, skipping scheduled run")
	default:
		runErr = e.scan(ctx, snap, mode, now, report, logger)
		switch {
		case runErr != nil:
			report.Status = StatusFailed
		case report.HasErrors():
			report.Status = StatusPartial
		default:
			report.Status = StatusSuccess
		}
	}

	e.finish(ctx, report, span, logger)
	telemetry.RecordError(span, runErr, "scan")
	return report, runErr
}

func isManual(trigger string) bool {
	return trigger == TriggerManual || trigger == TriggerAPI
}

func (e *Engine) lockFile() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(e.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("scan lock: %w", err)
	}
	fl := flock.New(e.lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("scan lock: %w", err)
	}
	if !ok {
		metrics.RecordScanRejected()
		return nil, ErrScanInProgress
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			e.logger.Warn().Err(err).Str(log.FieldPath, e.lockPath).Msg("failed to release scan lock")
		}
	}, nil
}

// scan runs the pipeline. Only a failure to read the guide or the timer list
// is returned; per-timer failures are recorded in the report.
func (e *Engine) scan(ctx context.Context, snap *Snapshot, mode string, now time.Time, report *RunReport, logger zerolog.Logger) error {
	programs, err := e.fetchPrograms(ctx, now, report.WindowTo)
	if err != nil {
		report.addError(ErrTypeFetchPrograms, err, e.now(), true)
		logger.Error().Err(err).Msg("failed to fetch programs")
		return fmt.Errorf("fetch programs: %w", err)
	}
	report.Summary.ProgramsScanned = len(programs)

	timers, err := e.fetchTimers(ctx)
	if err != nil {
		report.addError(ErrTypeFetchTimers, err, e.now(), true)
		logger.Error().Err(err).Msg("failed to fetch existing timers")
		return fmt.Errorf("fetch timers: %w", err)
	}

	classifier := classify.New(snap.Tables, classify.WithReferenceTime(now))

	matches, err := e.match(ctx, snap, classifier, programs, report)
	if err != nil {
		report.addError(ErrTypeCancelled, err, e.now(), false)
		logger.Warn().Err(err).Msg("scan cancelled while matching")
		return err
	}

	existing := e.reconcile(ctx, snap, classifier, mode, now, timers, report, logger)

	groups := e.group(ctx, snap, matches, report)
	groups = skipCovered(groups, existing, report)

	result := e.schedule(ctx, snap, groups, existing, report)
	e.commit(ctx, snap, result, report, logger)
	return nil
}

func (e *Engine) fetchPrograms(ctx context.Context, from, to time.Time) ([]model.Program, error) {
	ctx, span := e.tracer.Start(ctx, "scan.fetch_programs")
	defer span.End()

	all, err := e.host.FetchPrograms(ctx, from, to)
	if err != nil {
		telemetry.RecordError(span, err, ErrTypeFetchPrograms)
		return nil, err
	}
	programs := make([]model.Program, 0, len(all))
	for _, p := range all {
		if p.Start.Before(from) || !p.Start.Before(to) {
			continue
		}
		programs = append(programs, p)
	}
	span.SetAttributes(attribute.Int(telemetry.ScanProgramsKey, len(programs)))
	return programs, nil
}

func (e *Engine) fetchTimers(ctx context.Context) ([]model.ExistingTimer, error) {
	ctx, span := e.tracer.Start(ctx, "scan.fetch_timers")
	defer span.End()

	timers, err := e.host.FetchTimers(ctx)
	telemetry.RecordError(span, err, ErrTypeFetchTimers)
	return timers, err
}

// reconcile classifies existing timers by ownership. In full mode our future
// timers are cancelled so the schedule can be rebuilt; everything else that
// has not ended yet stays as a fixed slot.
func (e *Engine) reconcile(ctx context.Context, snap *Snapshot, classifier *classify.Classifier, mode string, now time.Time, timers []model.ExistingTimer, report *RunReport, logger zerolog.Logger) []model.ExistingTimer {
	ctx, span := e.tracer.Start(ctx, "scan.reconcile")
	defer span.End()

	o := owner{snap: snap, classifier: classifier, ledger: e.ledger}
	kept := make([]model.ExistingTimer, 0, len(timers))
	for _, t := range timers {
		if !t.End.After(now) {
			continue
		}
		report.Summary.ExistingTimers++

		source, err := o.check(ctx, t)
		if err != nil {
			report.addError(ErrTypeLedger, fmt.Errorf("ownership of timer %s: %w", t.ID, err), e.now(), true)
			kept = append(kept, t)
			continue
		}
		if source != "" {
			report.Summary.OwnedTimers++
		}
		if mode != config.ModeFull || source == "" || !t.Start.After(now) {
			kept = append(kept, t)
			continue
		}

		tl := logger.With().Str(log.FieldTimerID, t.ID).Str(log.FieldChannel, t.ChannelID).Logger()
		if err := e.host.CancelTimer(ctx, t.ID); err != nil {
			metrics.RecordTimerOperation("cancel", "error")
			report.addError(ErrTypeCancelTimer, fmt.Errorf("cancel timer %s: %w", t.ID, err), e.now(), true)
			tl.Warn().Err(err).Msg("failed to cancel owned timer, keeping it")
			kept = append(kept, t)
			continue
		}
		metrics.RecordTimerOperation("cancel", "success")
		report.Summary.TimersCancelled++
		report.addDecision(RunDecision{
			ChannelID: t.ChannelID,
			Title:     t.Name,
			Start:     t.Start,
			End:       t.End,
			Action:    ActionCancelled,
			Reason:    "rebuild",
			TimerID:   t.ID,
			Details:   "owned via " + source,
		})
		tl.Info().Str("owned_by", source).Msg("cancelled owned timer for rebuild")

		if e.ledger != nil {
			if err := e.ledger.Forget(ctx, t.ID); err != nil {
				report.addError(ErrTypeLedger, fmt.Errorf("forget timer %s: %w", t.ID, err), e.now(), true)
			}
		}
	}
	return kept
}

// match classifies every program and runs the likely games through the
// subscription matcher. Cancellation is checked before each program.
func (e *Engine) match(ctx context.Context, snap *Snapshot, classifier *classify.Classifier, programs []model.Program, report *RunReport) ([]subscription.Match, error) {
	ctx, span := e.tracer.Start(ctx, "scan.match")
	defer span.End()

	var matches []subscription.Match
	for _, p := range programs {
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err, ErrTypeCancelled)
			return nil, err
		}

		c := snap.classify(classifier, p)
		if c.IsLikelyGame() {
			report.Summary.ClassifiedLikely++
		}
		if !isCandidate(c) {
			report.Summary.NotSports++
			continue
		}

		m, d := snap.Matcher.Match(p, c, snap.Subscriptions)
		metrics.RecordMatchDecision(string(d.Reason))
		if !d.Matched() {
			if d.Reason != subscription.ReasonNoSubscription {
				report.addDecision(programDecision(p, d.SubscriptionID, ActionSkipped, string(d.Reason), d.Detail))
			}
			continue
		}
		matches = append(matches, m)
	}
	report.Summary.Matched = len(matches)
	span.SetAttributes(attribute.Int(telemetry.ScanMatchesKey, len(matches)))
	return matches, nil
}

func (e *Engine) group(ctx context.Context, snap *Snapshot, matches []subscription.Match, report *RunReport) []*dedup.Group {
	_, span := e.tracer.Start(ctx, "scan.dedup")
	defer span.End()

	groups := snap.Dedup.Group(matches)
	report.Summary.Groups = len(groups)
	span.SetAttributes(attribute.Int(telemetry.ScanGroupsKey, len(groups)))
	return groups
}

// skipCovered drops groups where any broadcast already has a timer on its
// channel running at the broadcast start.
func skipCovered(groups []*dedup.Group, existing []model.ExistingTimer, report *RunReport) []*dedup.Group {
	if len(existing) == 0 {
		return groups
	}
	out := make([]*dedup.Group, 0, len(groups))
	for _, g := range groups {
		if t, ok := coveringTimer(g, existing); ok {
			report.Summary.SkippedExisting++
			d := programDecision(g.Primary.Program, g.Subscription().ID, ActionSkipped, "already_scheduled", t.Name)
			d.TimerID = t.ID
			report.addDecision(d)
			continue
		}
		out = append(out, g)
	}
	return out
}

func coveringTimer(g *dedup.Group, existing []model.ExistingTimer) (model.ExistingTimer, bool) {
	for _, m := range g.Members() {
		for _, t := range existing {
			if t.ChannelID == m.Program.ChannelID && t.Slot().Contains(m.Program.Start) {
				return t, true
			}
		}
	}
	return model.ExistingTimer{}, false
}

func (e *Engine) schedule(ctx context.Context, snap *Snapshot, groups []*dedup.Group, existing []model.ExistingTimer, report *RunReport) schedule.Result {
	_, span := e.tracer.Start(ctx, "scan.schedule")
	defer span.End()

	fixed := make([]model.TimeSlot, 0, len(existing))
	for _, t := range existing {
		fixed = append(fixed, t.Slot())
	}

	b := schedule.NewBuilder(schedule.WithWindow(snap.Window), schedule.WithStrategy(snap.Strategy))
	res := b.Build(groups, snap.MaxConcurrent, fixed)

	report.Summary.Scheduled = len(res.Scheduled)
	report.Summary.Unfit = len(res.Unfit)
	for _, g := range res.Unfit {
		report.addDecision(programDecision(g.Primary.Program, g.Subscription().ID, ActionUnfit, "capacity",
			fmt.Sprintf("max_concurrent=%d", snap.MaxConcurrent)))
	}
	span.SetAttributes(
		attribute.Int(telemetry.ScanAcceptedKey, len(res.Scheduled)),
		attribute.Int(telemetry.ScanUnfitKey, len(res.Unfit)),
	)
	return res
}

// commit creates one timer per scheduled recording. Failures are counted and
// never stop the remaining recordings.
func (e *Engine) commit(ctx context.Context, snap *Snapshot, res schedule.Result, report *RunReport, logger zerolog.Logger) {
	ctx, span := e.tracer.Start(ctx, "scan.commit")
	defer span.End()

	for _, rec := range res.Scheduled {
		req := snap.TimerRequest(rec)
		sub := rec.Group.Subscription()
		p := req.Program
		pl := logger.With().
			Str(log.FieldProgramID, p.ID).
			Str(log.FieldSubscriptionID, sub.ID).
			Str(log.FieldChannel, p.ChannelID).
			Logger()

		id, err := e.host.CreateTimer(ctx, req)
		switch {
		case errors.Is(err, ErrTimerConflict):
			metrics.RecordTimerOperation("create", "conflict")
			report.Summary.TimersConflicted++
			report.addError(ErrTypeCreateTimer, fmt.Errorf("create timer for %s: %w", p.ID, err), e.now(), false)
			report.addDecision(programDecision(p, sub.ID, ActionConflict, "host_conflict", err.Error()))
			pl.Warn().Err(err).Msg("host rejected timer as conflicting")
			continue
		case err != nil:
			metrics.RecordTimerOperation("create", "error")
			report.Summary.TimersErrored++
			report.addError(ErrTypeCreateTimer, fmt.Errorf("create timer for %s: %w", p.ID, err), e.now(), true)
			report.addDecision(programDecision(p, sub.ID, ActionError, "host_error", err.Error()))
			pl.Error().Err(err).Msg("failed to create timer")
			continue
		}

		metrics.RecordTimerOperation("create", "success")
		report.Summary.TimersCreated++
		d := programDecision(p, sub.ID, ActionCreated, "scheduled", "")
		d.TimerID = id
		if n := rec.Group.BackupChannels(); n > 0 {
			d.Details = fmt.Sprintf("backups: %d", n)
		}
		report.addDecision(d)
		pl.Info().Str(log.FieldTimerID, id).Int("priority", req.Priority).Msg("timer created")

		if e.ledger != nil {
			owned := store.OwnedTimer{
				TimerID:        id,
				ProgramID:      p.ID,
				SubscriptionID: sub.ID,
				ChannelID:      p.ChannelID,
				Start:          req.Window().Start,
				End:            req.Window().End,
				CreatedAt:      e.now().UTC(),
			}
			if err := e.ledger.MarkOwned(ctx, owned); err != nil {
				report.addError(ErrTypeLedger, fmt.Errorf("record timer %s: %w", id, err), e.now(), true)
				pl.Warn().Err(err).Msg("failed to record owned timer")
			}
		}
	}
}

func programDecision(p model.Program, subID, action, reason, details string) RunDecision {
	return RunDecision{
		ProgramID:      p.ID,
		ChannelID:      p.ChannelID,
		Title:          p.Title,
		Start:          p.Start,
		End:            p.End,
		SubscriptionID: subID,
		Action:         action,
		Reason:         reason,
		Details:        details,
	}
}

func (e *Engine) finish(ctx context.Context, report *RunReport, span trace.Span, logger zerolog.Logger) {
	report.FinishedAt = e.now().UTC()
	report.DurationMs = report.FinishedAt.Sub(report.StartedAt).Milliseconds()
	s := report.Summary

	metrics.RecordScan(report.Trigger, report.Status, report.FinishedAt.Sub(report.StartedAt))
	if report.Status != StatusSkipped {
		metrics.SetScanResults(s.ProgramsScanned, s.Scheduled, s.Unfit)
	}
	span.SetAttributes(telemetry.ScanResultAttributes(report.Status, s.ProgramsScanned, s.Matched, s.Groups, s.Scheduled, s.Unfit)...)
	telemetry.RecordDecisions(trace.ContextWithSpan(ctx, span), report.decisionCounts())

	e.mu.Lock()
	e.latest = report
	e.mu.Unlock()

	if e.reportsDir != "" {
		if err := e.persistReport(report); err != nil {
			logger.Warn().Err(err).Msg("failed to persist run report")
		}
	}

	if e.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		if err := e.notifier.PublishReport(nctx, report); err != nil {
			logger.Warn().Err(err).Msg("failed to publish run report")
		}
		cancel()
	}

	evt := logger.Info()
	if report.Status != StatusSuccess && report.Status != StatusSkipped {
		evt = logger.Warn()
	}
	evt.
		Str("status", report.Status).
		Int("programs", s.ProgramsScanned).
		Int("matched", s.Matched).
		Int("groups", s.Groups).
		Int("scheduled", s.Scheduled).
		Int("unfit", s.Unfit).
		Int("created", s.TimersCreated).
		Int("cancelled", s.TimersCancelled).
		Int("skipped_existing", s.SkippedExisting).
		Int("errors", len(report.Errors)+report.ErrorsDropped).
		Int64("duration_ms", report.DurationMs).
		Msg("scan finished")
}

func (e *Engine) persistReport(report *RunReport) error {
	if err := os.MkdirAll(e.reportsDir, 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(filepath.Join(e.reportsDir, LatestReportFile), data, 0o644)
}

// LatestReport returns the most recent report of this process, falling back
// to the persisted one from a previous run.
func (e *Engine) LatestReport() (*RunReport, bool) {
	e.mu.RLock()
	latest := e.latest
	e.mu.RUnlock()
	if latest != nil {
		return latest, true
	}
	if e.reportsDir == "" {
		return nil, false
	}
	r, err := LoadReport(filepath.Join(e.reportsDir, LatestReportFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn().Err(err).Msg("failed to load persisted run report")
		}
		return nil, false
	}
	return r, true
}

// LoadReport reads a persisted report.
func LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}

// Catalog returns the engine's subscription catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}
