package dvr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/dedup"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/schedule"
	"github.com/ManuGH/sportsdvr/internal/store"
)

// OwnershipMarker tags the overview of every timer this service creates.
const OwnershipMarker = "[sportsdvr]"

// Ownership sources, in the order they are consulted.
const (
	OwnedByMarker    = "marker"
	OwnedByLedger    = "ledger"
	OwnedByHeuristic = "heuristic"
)

// Paddings returns the effective start and end padding of a group: the host
// default, raised to the sport-specific end padding where that is longer.
func (s *Snapshot) Paddings(g *dedup.Group) (time.Duration, time.Duration) {
	start := max(s.StartPadding, 0)
	end := max(s.EndPadding, 0)
	if s.Tables != nil {
		end = max(end, s.Tables.EndPadding(g.Primary.Classification.League, g.Primary.Program.Categories))
	}
	return start, end
}

// Window is the schedule.WindowFunc of a snapshot: the primary broadcast
// widened by its paddings.
func (s *Snapshot) Window(g *dedup.Group) model.TimeSlot {
	start, end := s.Paddings(g)
	return model.TimeSlot{
		Start: g.Primary.Program.Start.Add(-start),
		End:   g.Primary.Program.End.Add(end),
	}
}

// TimerRequest builds the host request for a scheduled recording.
func (s *Snapshot) TimerRequest(rec schedule.Recording) TimerRequest {
	g := rec.Group
	start, end := s.Paddings(g)
	return TimerRequest{
		Program:      g.Primary.Program,
		StartPadding: start,
		EndPadding:   end,
		Priority:     g.EffectivePriority(),
		Overview:     Overview(g),
	}
}

// Overview is the timer description: the ownership marker, then the
// subscription, league and backup channel count.
func Overview(g *dedup.Group) string {
	sub := g.Subscription()
	name := sub.Name
	if name == "" {
		name = sub.ID
	}
	parts := []string{OwnershipMarker, name}
	if l := g.Primary.Classification.League; l != "" {
		parts = append(parts, "| "+l)
	}
	if n := g.BackupChannels(); n > 0 {
		parts = append(parts, fmt.Sprintf("| backups: %d", n))
	}
	return strings.Join(parts, " ")
}

// owner decides whether an existing timer was created by this service.
type owner struct {
	snap       *Snapshot
	classifier *classify.Classifier
	ledger     store.Ledger
}

// check returns the ownership source, or "" for a foreign timer. Ledger
// errors other than a miss are returned and the heuristic is skipped.
func (o owner) check(ctx context.Context, t model.ExistingTimer) (string, error) {
	if strings.Contains(t.Overview, OwnershipMarker) {
		return OwnedByMarker, nil
	}
	if o.ledger != nil {
		ok, err := o.ledger.Owned(ctx, t.ID)
		if err != nil {
			return "", err
		}
		if ok {
			return OwnedByLedger, nil
		}
	}

	p := model.Program{
		ID:          t.ID,
		ChannelID:   t.ChannelID,
		Title:       t.Name,
		Description: t.Overview,
		Start:       t.Start,
		End:         t.End,
		IsLive:      true,
	}
	c := o.classifier.Score(p.Title, p.ChannelName, secondaryText(p), false)
	if !isCandidate(c) {
		return "", nil
	}
	if _, d := o.snap.Matcher.Match(p, c, o.snap.Subscriptions); d.Matched() {
		return OwnedByHeuristic, nil
	}
	return "", nil
}
