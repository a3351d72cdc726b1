package dvr

import (
	"context"
	"errors"
	"time"

	"github.com/ManuGH/sportsdvr/internal/model"
)

// ErrTimerConflict is returned by a TimerSink when the host refuses a timer
// because it collides with another recording.
var ErrTimerConflict = errors.New("timer conflicts with an existing recording")

// ProgramSource supplies guide programs.
type ProgramSource interface {
	FetchPrograms(ctx context.Context, from, to time.Time) ([]model.Program, error)
}

// TimerSource lists timers already present on the host.
type TimerSource interface {
	FetchTimers(ctx context.Context) ([]model.ExistingTimer, error)
}

// TimerRequest asks the host to record a program.
type TimerRequest struct {
	Program      model.Program
	StartPadding time.Duration
	EndPadding   time.Duration
	Priority     int
	Overview     string
}

// Window is the padded recording interval.
func (r TimerRequest) Window() model.TimeSlot {
	return model.TimeSlot{
		Start: r.Program.Start.Add(-r.StartPadding),
		End:   r.Program.End.Add(r.EndPadding),
	}
}

// TimerSink creates and removes host timers.
type TimerSink interface {
	CreateTimer(ctx context.Context, req TimerRequest) (string, error)
	CancelTimer(ctx context.Context, id string) error
}

// Host is a DVR that is both guide and recorder.
type Host interface {
	ProgramSource
	TimerSource
	TimerSink
}

// Notifier publishes finished run reports.
type Notifier interface {
	PublishReport(ctx context.Context, r *RunReport) error
}
