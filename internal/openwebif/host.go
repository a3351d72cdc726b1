package openwebif

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/metrics"
	"github.com/ManuGH/sportsdvr/internal/model"
)

var _ dvr.Host = (*Host)(nil)

// Host adapts a receiver to the scan engine ports.
type Host struct {
	client      *Client
	bouquet     string
	concurrency int
	logger      zerolog.Logger
}

// NewHost wraps client. bouquet restricts channel discovery to one bouquet
// reference; concurrency bounds parallel guide requests.
func NewHost(client *Client, bouquet string, concurrency int) *Host {
	return &Host{
		client:      client,
		bouquet:     bouquet,
		concurrency: max(concurrency, 1),
		logger:      log.WithComponent("openwebif.host"),
	}
}

// FetchPrograms reads the guide of every channel and returns the entries
// starting in [from, to). A failing channel is logged and skipped; an error
// is returned only when no channel could be read.
func (h *Host) FetchPrograms(ctx context.Context, from, to time.Time) ([]model.Program, error) {
	services, err := h.client.Services(ctx, h.bouquet)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	if len(services) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		programs []model.Program
		failed   int
		lastErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for _, svc := range services {
		g.Go(func() error {
			events, err := h.client.EPG(gctx, svc.Ref)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				metrics.RecordEPGChannelFailure()
				h.logger.Warn().Err(err).Str(log.FieldChannel, svc.Ref).Msg("guide fetch failed, channel skipped")
				mu.Lock()
				failed++
				lastErr = err
				mu.Unlock()
				return nil
			}
			batch := make([]model.Program, 0, len(events))
			for _, ev := range events {
				p, ok := programFromEvent(svc, ev)
				if !ok || p.Start.Before(from) || !p.Start.Before(to) {
					continue
				}
				batch = append(batch, p)
			}
			mu.Lock()
			programs = append(programs, batch...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failed == len(services) {
		return nil, fmt.Errorf("guide unavailable on all %d channels: %w", failed, lastErr)
	}
	if failed > 0 {
		h.logger.Info().Int("failed", failed).Int("channels", len(services)).Msg("guide partially read")
	}
	return programs, nil
}

func programFromEvent(svc Service, ev EPGEvent) (model.Program, bool) {
	if ev.Begin <= 0 || ev.Duration <= 0 || strings.TrimSpace(ev.Title) == "" {
		return model.Program{}, false
	}
	ref := ev.ServiceRef
	if ref == "" {
		ref = svc.Ref
	}
	name := ev.ServiceName
	if name == "" {
		name = svc.Name
	}
	start := time.Unix(int64(ev.Begin), 0).UTC()
	p := model.Program{
		ID:          ref + "|" + strconv.FormatInt(int64(ev.ID), 10),
		ChannelID:   ref,
		ChannelName: name,
		Title:       strings.TrimSpace(ev.Title),
		Subtitle:    strings.TrimSpace(ev.ShortDesc),
		Description: strings.TrimSpace(ev.LongDesc),
		Start:       start,
		End:         start.Add(time.Duration(ev.Duration) * time.Second),
	}
	if g := strings.TrimSpace(ev.Genre); g != "" {
		p.Categories = []string{g}
	}
	return p, true
}

// FetchTimers lists pending and running timers. Finished timers are ignored.
func (h *Host) FetchTimers(ctx context.Context) ([]model.ExistingTimer, error) {
	timers, err := h.client.Timers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExistingTimer, 0, len(timers))
	for _, t := range timers {
		if t.State == TimerStateFinished {
			continue
		}
		out = append(out, model.ExistingTimer{
			ID:        TimerID(t.ServiceRef, int64(t.Begin), int64(t.End)),
			Name:      t.Name,
			ChannelID: t.ServiceRef,
			Start:     time.Unix(int64(t.Begin), 0).UTC(),
			End:       time.Unix(int64(t.End), 0).UTC(),
			Overview:  t.Description,
		})
	}
	return out, nil
}

// CreateTimer adds a timer for the padded window of req.
func (h *Host) CreateTimer(ctx context.Context, req dvr.TimerRequest) (string, error) {
	w := req.Window()
	begin, end := w.Start.Unix(), w.End.Unix()
	err := h.client.AddTimer(ctx, req.Program.ChannelID, begin, end, req.Program.Title, req.Overview)
	if err != nil {
		if IsTimerConflict(err) {
			return "", fmt.Errorf("%w: %w", dvr.ErrTimerConflict, err)
		}
		return "", err
	}
	return TimerID(req.Program.ChannelID, begin, end), nil
}

// CancelTimer deletes the timer with the given id. A timer that no longer
// exists counts as cancelled.
func (h *Host) CancelTimer(ctx context.Context, id string) error {
	sRef, begin, end, err := ParseTimerID(id)
	if err != nil {
		return err
	}
	if err := h.client.DeleteTimer(ctx, sRef, begin, end); err != nil && !IsTimerNotFound(err) {
		return err
	}
	return nil
}

// TimerID builds the identifier of a receiver timer.
func TimerID(sRef string, begin, end int64) string {
	return fmt.Sprintf("%s|%d|%d", sRef, begin, end)
}

var errInvalidTimerID = errors.New("invalid timer id")

// ParseTimerID splits an id built by TimerID.
func ParseTimerID(id string) (sRef string, begin, end int64, err error) {
	i := strings.LastIndex(id, "|")
	if i <= 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", errInvalidTimerID, id)
	}
	j := strings.LastIndex(id[:i], "|")
	if j <= 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", errInvalidTimerID, id)
	}
	begin, err = strconv.ParseInt(id[j+1:i], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", errInvalidTimerID, id)
	}
	end, err = strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil || end < begin {
		return "", 0, 0, fmt.Errorf("%w: %q", errInvalidTimerID, id)
	}
	return id[:j], begin, end, nil
}
