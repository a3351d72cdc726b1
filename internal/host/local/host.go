// Package local is a host without a receiver: programs come from an XMLTV
// file and timers live in the store's timer book.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/store"
)

var _ dvr.Host = (*Host)(nil)

// Host implements dvr.Host on top of a program source and a timer book.
type Host struct {
	dvr.ProgramSource
	book   store.TimerBook
	newID  func() string
	logger zerolog.Logger
}

// New creates a local host.
func New(programs dvr.ProgramSource, book store.TimerBook) *Host {
	return &Host{
		ProgramSource: programs,
		book:          book,
		newID:         uuid.NewString,
		logger:        log.WithComponent("host.local"),
	}
}

// FetchTimers lists the booked timers.
func (h *Host) FetchTimers(ctx context.Context) ([]model.ExistingTimer, error) {
	timers, err := h.book.ListTimers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list timers: %w", err)
	}
	return timers, nil
}

// CreateTimer books the padded window of req. A booked timer on the same
// channel overlapping the window is a conflict.
func (h *Host) CreateTimer(ctx context.Context, req dvr.TimerRequest) (string, error) {
	window := req.Window()
	existing, err := h.book.ListTimers(ctx)
	if err != nil {
		return "", fmt.Errorf("list timers: %w", err)
	}
	for _, t := range existing {
		if t.ChannelID == req.Program.ChannelID && t.Slot().Overlaps(window) {
			return "", fmt.Errorf("%w: %s", dvr.ErrTimerConflict, strings.TrimSpace(t.Name))
		}
	}

	timer := model.ExistingTimer{
		ID:        h.newID(),
		Name:      req.Program.Title,
		ChannelID: req.Program.ChannelID,
		Start:     window.Start,
		End:       window.End,
		Overview:  req.Overview,
	}
	if err := h.book.PutTimer(ctx, timer); err != nil {
		return "", fmt.Errorf("book timer: %w", err)
	}
	h.logger.Debug().
		Str(log.FieldTimerID, timer.ID).
		Str(log.FieldProgramID, req.Program.ID).
		Time("start", timer.Start).
		Time("end", timer.End).
		Msg("timer booked")
	return timer.ID, nil
}

// CancelTimer removes a booked timer. Unknown ids are ignored.
func (h *Host) CancelTimer(ctx context.Context, id string) error {
	if err := h.book.DeleteTimer(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("cancel timer %s: %w", id, err)
	}
	return nil
}
