package dvr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/sportsdvr/internal/log"
)

// TriggerRetry marks a run scheduled after a failed one.
const TriggerRetry = "retry"

// Runner executes a scan.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunReport, error)
}

// Clock interface for mocking time
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer interface for mocking time.Timer
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// RealClock implements Clock using standard time package
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
func (RealClock) NewTimer(d time.Duration) Timer {
	return &RealTimer{t: time.NewTimer(d)}
}

// RealTimer wraps time.Timer
type RealTimer struct {
	t *time.Timer
}

func (r *RealTimer) C() <-chan time.Time        { return r.t.C }
func (r *RealTimer) Stop() bool                 { return r.t.Stop() }
func (r *RealTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

// Scheduler triggers a scan once after startup and then daily at a fixed
// local time. A failed run is retried with exponential backoff until the
// next daily run is closer.
type Scheduler struct {
	runner Runner
	logger zerolog.Logger

	StartupDelay time.Duration
	RetryBase    time.Duration
	RetryMax     time.Duration

	daily    bool
	hour     int
	minute   int
	location *time.Location

	clock Clock

	mu    sync.Mutex
	retry time.Duration
	done  chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock replaces the real clock.
func WithSchedulerClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocation sets the time zone of the daily trigger. Default is time.Local.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewScheduler creates a scheduler. dailyAt is "HH:MM"; empty disables the
// daily trigger.
func NewScheduler(runner Runner, dailyAt string, startupDelay time.Duration, opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		runner:       runner,
		logger:       log.WithComponent("dvr.scheduler"),
		StartupDelay: max(startupDelay, 0),
		RetryBase:    5 * time.Minute,
		RetryMax:     time.Hour,
		location:     time.Local,
		clock:        RealClock{},
		done:         make(chan struct{}),
	}
	if dailyAt != "" {
		t, err := time.Parse("15:04", dailyAt)
		if err != nil {
			return nil, fmt.Errorf("daily_at %q: %w", dailyAt, err)
		}
		s.daily, s.hour, s.minute = true, t.Hour(), t.Minute()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins the scheduling loop in a background goroutine.
// It returns immediately. The loop stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Done is closed when the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	s.logger.Info().
		Dur("startup_delay", s.StartupDelay).
		Bool("daily", s.daily).
		Msg("scan scheduler started")

	timer := s.clock.NewTimer(s.StartupDelay)
	defer timer.Stop()
	trigger := TriggerStartup

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scan scheduler stopping")
			return
		case <-timer.C():
			s.runOnce(ctx, trigger)

			d, next, ok := s.next()
			if !ok {
				s.logger.Info().Msg("no further scans scheduled")
				<-ctx.Done()
				return
			}
			trigger = next
			s.logger.Debug().Str(log.FieldTrigger, next).Dur("in", d).Msg("next scan scheduled")
			timer.Reset(d)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, trigger string) {
	s.logger.Debug().Str(log.FieldTrigger, trigger).Msg("triggering scan")

	report, err := s.runner.Run(ctx, RunRequest{Trigger: trigger})
	switch {
	case errors.Is(err, ErrScanInProgress):
		s.logger.Info().Str(log.FieldTrigger, trigger).Msg("scan already running, trigger dropped")
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).Str(log.FieldTrigger, trigger).Msg("scan failed, backing off")
		s.increaseBackoff()
	default:
		if report != nil && report.Status == StatusPartial {
			s.logger.Warn().Str(log.FieldRunID, report.RunID).Msg("scan finished with errors")
		}
		s.resetBackoff()
	}
}

// next returns the delay and trigger of the next run. ok is false when
// nothing is scheduled.
func (s *Scheduler) next() (time.Duration, string, bool) {
	s.mu.Lock()
	retry := s.retry
	s.mu.Unlock()

	now := s.clock.Now()
	if !s.daily {
		if retry > 0 {
			return retry, TriggerRetry, true
		}
		return 0, "", false
	}
	d := s.nextDaily(now).Sub(now)
	if retry > 0 && retry < d {
		return retry, TriggerRetry, true
	}
	return d, TriggerDaily, true
}

func (s *Scheduler) nextDaily(now time.Time) time.Time {
	local := now.In(s.location)
	t := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.location)
	if !t.After(local) {
		t = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.location)
	}
	return t
}

func (s *Scheduler) increaseBackoff() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retry == 0 {
		s.retry = s.RetryBase
	} else {
		s.retry *= 2
	}
	if s.retry > s.RetryMax {
		s.retry = s.RetryMax
	}
	s.logger.Info().Str("next_interval", s.retry.String()).Msg("increased scan retry backoff")
}

func (s *Scheduler) resetBackoff() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retry != 0 {
		s.logger.Info().Msg("reset scan retry backoff")
		s.retry = 0
	}
}
