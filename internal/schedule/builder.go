// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package schedule selects a conflict-free set of game groups under a
// concurrent-recording cap.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/ManuGH/sportsdvr/internal/dedup"
	"github.com/ManuGH/sportsdvr/internal/model"
)

// Strategy selects the scheduling algorithm.
type Strategy string

const (
	// Tiered processes one tier per subscription in rank order, earliest end
	// first within a tier. Tiers are never revisited. A candidate is admitted
	// while fewer than maxConcurrent committed windows overlap it.
	Tiered Strategy = "tiered"
	// TieredPeak is Tiered admitting on the peak simultaneous overlap, so
	// committed windows that never coincide count once.
	TieredPeak Strategy = "tiered-peak"
	// Preemptive sweeps all groups in start order, evicting lower priority
	// acceptances when a higher priority group needs their slot, then
	// re-inserts evicted groups into leftover gaps.
	Preemptive Strategy = "preemptive"
)

// ParseStrategy validates a configured strategy name. Empty means Tiered.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", Tiered:
		return Tiered, nil
	case TieredPeak, Preemptive:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown schedule strategy %q", s)
}

// WindowFunc returns the recording window of a group, padding included.
type WindowFunc func(g *dedup.Group) model.TimeSlot

// NominalWindow uses the primary program's start and end unchanged.
func NominalWindow(g *dedup.Group) model.TimeSlot {
	return model.TimeSlot{Start: g.Primary.Program.Start, End: g.Primary.Program.End}
}

// Recording is a group accepted for recording in a concrete window.
type Recording struct {
	Group *dedup.Group
	Start time.Time
	End   time.Time
	Tier  string
}

// Slot returns the recording window.
func (r Recording) Slot() model.TimeSlot {
	return model.TimeSlot{Start: r.Start, End: r.End}
}

// Result is the builder output.
type Result struct {
	Scheduled []Recording
	Unfit     []*dedup.Group
}

// Builder builds recording schedules.
type Builder struct {
	window   WindowFunc
	strategy Strategy
}

// Option configures a Builder.
type Option func(*Builder)

// WithWindow sets the window function.
func WithWindow(fn WindowFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.window = fn
		}
	}
}

// WithStrategy sets the scheduling algorithm.
func WithStrategy(s Strategy) Option {
	return func(b *Builder) {
		if s != "" {
			b.strategy = s
		}
	}
}

// NewBuilder returns a tiered builder over nominal windows unless configured otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{window: NominalWindow, strategy: Tiered}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Strategy returns the configured algorithm.
func (b *Builder) Strategy() Strategy {
	return b.strategy
}

// Build selects recordings so that at every instant the number of accepted
// windows plus fixed slots never exceeds maxConcurrent. Fixed slots are never evicted.
func (b *Builder) Build(groups []*dedup.Group, maxConcurrent int, fixed []model.TimeSlot) Result {
	var res Result
	switch b.strategy {
	case Preemptive:
		res = b.buildPreemptive(groups, maxConcurrent, fixed)
	case TieredPeak:
		res = b.buildTiered(groups, maxConcurrent, fixed, Peak)
	default:
		res = b.buildTiered(groups, maxConcurrent, fixed, Overlapping)
	}
	sort.SliceStable(res.Scheduled, func(i, j int) bool {
		a, c := res.Scheduled[i], res.Scheduled[j]
		if !a.Start.Equal(c.Start) {
			return a.Start.Before(c.Start)
		}
		return a.Group.Primary.Program.ID < c.Group.Primary.Program.ID
	})
	return res
}

type tier struct {
	id    string
	rank  int
	items []candidate
}

type candidate struct {
	group *dedup.Group
	slot  model.TimeSlot
}

func (b *Builder) buildTiered(groups []*dedup.Group, maxConcurrent int, fixed []model.TimeSlot, load func([]model.TimeSlot, model.TimeSlot) int) Result {
	byID := map[string]*tier{}
	var tiers []*tier
	for _, g := range groups {
		s := g.Subscription()
		t, ok := byID[s.ID]
		if !ok {
			t = &tier{id: s.ID, rank: s.Rank}
			byID[s.ID] = t
			tiers = append(tiers, t)
		}
		t.items = append(t.items, candidate{group: g, slot: b.window(g)})
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].rank != tiers[j].rank {
			return tiers[i].rank < tiers[j].rank
		}
		return tiers[i].id < tiers[j].id
	})

	committed := append([]model.TimeSlot(nil), fixed...)
	var res Result
	for _, t := range tiers {
		sort.SliceStable(t.items, func(i, j int) bool {
			a, c := t.items[i].slot, t.items[j].slot
			if !a.End.Equal(c.End) {
				return a.End.Before(c.End)
			}
			if !a.Start.Equal(c.Start) {
				return a.Start.Before(c.Start)
			}
			return t.items[i].group.Primary.Program.ID < t.items[j].group.Primary.Program.ID
		})
		for _, c := range t.items {
			if load(committed, c.slot) < maxConcurrent {
				committed = append(committed, c.slot)
				res.Scheduled = append(res.Scheduled, Recording{Group: c.group, Start: c.slot.Start, End: c.slot.End, Tier: t.id})
				continue
			}
			res.Unfit = append(res.Unfit, c.group)
		}
	}
	return res
}

type accepted struct {
	candidate
	priority int
	order    int
}

func (b *Builder) buildPreemptive(groups []*dedup.Group, maxConcurrent int, fixed []model.TimeSlot) Result {
	cands := make([]accepted, 0, len(groups))
	for i, g := range groups {
		cands = append(cands, accepted{candidate: candidate{group: g, slot: b.window(g)}, priority: g.EffectivePriority(), order: i})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, c := cands[i], cands[j]
		if !a.slot.Start.Equal(c.slot.Start) {
			return a.slot.Start.Before(c.slot.Start)
		}
		if a.priority != c.priority {
			return a.priority > c.priority
		}
		return a.group.Primary.Program.ID < c.group.Primary.Program.ID
	})

	var kept []accepted
	var evicted []accepted
	var unfit []accepted
	slots := func(except map[int]bool) []model.TimeSlot {
		out := append([]model.TimeSlot(nil), fixed...)
		for _, k := range kept {
			if !except[k.order] {
				out = append(out, k.slot)
			}
		}
		return out
	}

	for _, c := range cands {
		if Peak(slots(nil), c.slot) < maxConcurrent {
			kept = append(kept, c)
			continue
		}
		// Evict overlapping lower-priority acceptances, weakest first.
		var victims []accepted
		for _, k := range kept {
			if k.priority < c.priority && k.slot.Overlaps(c.slot) {
				victims = append(victims, k)
			}
		}
		sort.SliceStable(victims, func(i, j int) bool { return victims[i].priority < victims[j].priority })
		drop := map[int]bool{}
		fits := false
		for _, v := range victims {
			drop[v.order] = true
			if Peak(slots(drop), c.slot) < maxConcurrent {
				fits = true
				break
			}
		}
		if !fits {
			unfit = append(unfit, c)
			continue
		}
		var next []accepted
		for _, k := range kept {
			if drop[k.order] {
				evicted = append(evicted, k)
				continue
			}
			next = append(next, k)
		}
		kept = append(next, c)
	}

	// Re-insert evicted recordings into whatever gaps remain.
	sort.SliceStable(evicted, func(i, j int) bool { return evicted[i].priority > evicted[j].priority })
	for _, e := range evicted {
		if Peak(slots(nil), e.slot) < maxConcurrent {
			kept = append(kept, e)
			continue
		}
		unfit = append(unfit, e)
	}

	var res Result
	for _, k := range kept {
		res.Scheduled = append(res.Scheduled, Recording{
			Group: k.group,
			Start: k.slot.Start,
			End:   k.slot.End,
			Tier:  k.group.Subscription().ID,
		})
	}
	for _, u := range unfit {
		res.Unfit = append(res.Unfit, u.group)
	}
	return res
}

// Overlapping counts the slots that overlap w anywhere.
func Overlapping(slots []model.TimeSlot, w model.TimeSlot) int {
	n := 0
	for _, s := range slots {
		if s.Overlaps(w) {
			n++
		}
	}
	return n
}

// Peak returns the maximum number of slots covering any single instant of w.
// Intervals are half-open, so back-to-back slots never count together.
func Peak(slots []model.TimeSlot, w model.TimeSlot) int {
	type event struct {
		at    time.Time
		delta int
	}
	var events []event
	for _, s := range slots {
		if !s.Overlaps(w) {
			continue
		}
		start, end := s.Start, s.End
		if start.Before(w.Start) {
			start = w.Start
		}
		if end.After(w.End) {
			end = w.End
		}
		events = append(events, event{start, 1}, event{end, -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].delta < events[j].delta
	})
	cur, peak := 0, 0
	for _, e := range events {
		cur += e.delta
		if cur > peak {
			peak = cur
		}
	}
	return peak
}
