// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package schedule

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/dedup"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

var day = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func sub(id string, rank int, kind subscription.Kind) subscription.Subscription {
	return subscription.Subscription{ID: id, Rank: rank, Kind: kind, Enabled: true}
}

func group(id string, s subscription.Subscription, start, end time.Time) *dedup.Group {
	return &dedup.Group{Primary: subscription.Match{
		Program:      model.Program{ID: id, Title: id, Start: start, End: end},
		Subscription: s,
	}}
}

func ids(recs []Recording) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Group.Primary.Program.ID)
	}
	return out
}

func unfitIDs(groups []*dedup.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Primary.Program.ID)
	}
	return out
}

func TestBuild_SameWindowOnlyTopTierFits(t *testing.T) {
	b := NewBuilder()
	top := group("top", sub("a", 0, subscription.KindTeam), at(19, 0), at(21, 30))
	low := group("low", sub("b", 1, subscription.KindTeam), at(19, 0), at(21, 30))

	res := b.Build([]*dedup.Group{low, top}, 1, nil)

	assert.Equal(t, []string{"top"}, ids(res.Scheduled))
	assert.Equal(t, []string{"low"}, unfitIDs(res.Unfit))
	assert.Equal(t, "a", res.Scheduled[0].Tier)
}

func TestBuild_TierPrecedenceOverCoverage(t *testing.T) {
	b := NewBuilder()
	// The rank-1 tier could record two games if it went first; rank 0 still wins the slot.
	top := group("top", sub("a", 0, subscription.KindLeague), at(18, 0), at(22, 0))
	l1 := group("l1", sub("b", 1, subscription.KindTeam), at(18, 0), at(19, 30))
	l2 := group("l2", sub("b", 1, subscription.KindTeam), at(20, 0), at(21, 30))

	res := b.Build([]*dedup.Group{l1, l2, top}, 1, nil)

	assert.Equal(t, []string{"top"}, ids(res.Scheduled))
	assert.ElementsMatch(t, []string{"l1", "l2"}, unfitIDs(res.Unfit))
}

func TestBuild_EarliestEndFirstWithinTier(t *testing.T) {
	b := NewBuilder()
	s := sub("a", 0, subscription.KindTeam)
	long := group("long", s, at(10, 0), at(16, 0))
	e1 := group("e1", s, at(10, 0), at(12, 0))
	e2 := group("e2", s, at(13, 0), at(15, 0))

	res := b.Build([]*dedup.Group{long, e1, e2}, 1, nil)

	assert.Equal(t, []string{"e1", "e2"}, ids(res.Scheduled))
	assert.Equal(t, []string{"long"}, unfitIDs(res.Unfit))
}

func TestBuild_FixedSlotsAreRespected(t *testing.T) {
	b := NewBuilder()
	fixed := []model.TimeSlot{{Start: at(19, 0), End: at(22, 0), Fixed: true}}
	g := group("g", sub("a", 0, subscription.KindTeam), at(20, 0), at(21, 0))
	after := group("after", sub("a", 0, subscription.KindTeam), at(22, 0), at(23, 0))

	res := b.Build([]*dedup.Group{g, after}, 1, fixed)
	assert.Equal(t, []string{"after"}, ids(res.Scheduled), "back-to-back half-open windows do not conflict")
	assert.Equal(t, []string{"g"}, unfitIDs(res.Unfit))

	res = b.Build([]*dedup.Group{g}, 2, fixed)
	assert.Equal(t, []string{"g"}, ids(res.Scheduled))
}

func TestBuild_TieredCountsOverlappingWindows(t *testing.T) {
	top := sub("top", 0, subscription.KindTeam)
	next := sub("next", 1, subscription.KindTeam)
	early := group("early", top, at(19, 0), at(20, 0))
	late := group("late", top, at(21, 0), at(22, 0))
	long := group("long", next, at(19, 0), at(22, 0))
	groups := []*dedup.Group{early, late, long}

	res := NewBuilder().Build(groups, 2, nil)
	assert.Equal(t, []string{"early", "late"}, ids(res.Scheduled))
	assert.Equal(t, []string{"long"}, unfitIDs(res.Unfit))

	// Peak admission sees early and late never coincide.
	res = NewBuilder(WithStrategy(TieredPeak)).Build(groups, 2, nil)
	assert.Equal(t, []string{"early", "long", "late"}, ids(res.Scheduled))
	assert.Empty(t, res.Unfit)
}

func TestBuild_WindowFunc(t *testing.T) {
	pad := func(g *dedup.Group) model.TimeSlot {
		return model.TimeSlot{Start: g.Primary.Program.Start, End: g.Primary.Program.End.Add(time.Hour)}
	}
	b := NewBuilder(WithWindow(pad))
	s := sub("a", 0, subscription.KindTeam)
	first := group("first", s, at(18, 0), at(19, 0))
	second := group("second", s, at(19, 30), at(20, 30))

	res := b.Build([]*dedup.Group{first, second}, 1, nil)
	require.Len(t, res.Scheduled, 1)
	assert.Equal(t, at(20, 0), res.Scheduled[0].End)
}

func TestBuild_Empty(t *testing.T) {
	res := NewBuilder().Build(nil, 2, nil)
	assert.Empty(t, res.Scheduled)
	assert.Empty(t, res.Unfit)
}

func TestBuild_ConcurrencyInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, strategy := range []Strategy{Tiered, TieredPeak, Preemptive} {
		for iter := 0; iter < 200; iter++ {
			maxConc := 1 + rng.Intn(3)
			var groups []*dedup.Group
			for i := 0; i < 12; i++ {
				start := at(rng.Intn(12), rng.Intn(4)*15)
				end := start.Add(time.Duration(30+rng.Intn(180)) * time.Minute)
				kind := subscription.KindLeague
				if rng.Intn(2) == 0 {
					kind = subscription.KindTeam
				}
				s := sub(fmt.Sprintf("s%d", rng.Intn(4)), rng.Intn(4), kind)
				groups = append(groups, group(fmt.Sprintf("g%02d", i), s, start, end))
			}
			// One fixed slot keeps fixed-only overlap within the cap.
			fixed := []model.TimeSlot{{Start: at(rng.Intn(12), 0), End: at(12, 30), Fixed: true}}

			res := NewBuilder(WithStrategy(strategy)).Build(groups, maxConc, fixed)

			require.Equal(t, len(groups), len(res.Scheduled)+len(res.Unfit))
			all := append([]model.TimeSlot(nil), fixed...)
			for _, r := range res.Scheduled {
				all = append(all, r.Slot())
			}
			whole := model.TimeSlot{Start: day, End: day.Add(48 * time.Hour)}
			require.LessOrEqual(t, Peak(all, whole), maxConc, "strategy %s iteration %d", strategy, iter)
		}
	}
}

func TestPreemptive_EvictsLowerPriority(t *testing.T) {
	b := NewBuilder(WithStrategy(Preemptive))
	low := group("low", sub("b", 1, subscription.KindLeague), at(10, 0), at(12, 0))
	high := group("high", sub("a", 0, subscription.KindTeam), at(11, 0), at(13, 0))
	later := group("later", sub("b", 1, subscription.KindLeague), at(13, 0), at(14, 0))

	res := b.Build([]*dedup.Group{low, high, later}, 1, nil)

	assert.Equal(t, []string{"high", "later"}, ids(res.Scheduled))
	assert.Equal(t, []string{"low"}, unfitIDs(res.Unfit))
}

func TestPreemptive_ReinsertsEvicted(t *testing.T) {
	b := NewBuilder(WithStrategy(Preemptive))
	low := group("low", sub("c", 2, subscription.KindLeague), at(10, 0), at(12, 0))
	mid := group("mid", sub("b", 1, subscription.KindLeague), at(11, 0), at(13, 0))
	high := group("high", sub("a", 0, subscription.KindTeam), at(12, 30), at(14, 0))

	res := b.Build([]*dedup.Group{low, mid, high}, 1, nil)

	// mid evicts low, high evicts mid, and low fits back into the gap before high.
	assert.Equal(t, []string{"low", "high"}, ids(res.Scheduled))
	assert.Equal(t, []string{"mid"}, unfitIDs(res.Unfit))
}

func TestStrategiesDiffer(t *testing.T) {
	s := sub("a", 0, subscription.KindTeam)
	long := group("a-long", s, at(10, 0), at(16, 0))
	e1 := group("b-e1", s, at(10, 0), at(12, 0))
	e2 := group("c-e2", s, at(13, 0), at(15, 0))
	groups := []*dedup.Group{long, e1, e2}

	tiered := NewBuilder(WithStrategy(Tiered)).Build(groups, 1, nil)
	preempt := NewBuilder(WithStrategy(Preemptive)).Build(groups, 1, nil)

	assert.Equal(t, []string{"b-e1", "c-e2"}, ids(tiered.Scheduled))
	assert.Equal(t, []string{"a-long"}, ids(preempt.Scheduled))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Tiered, s)
	s, err = ParseStrategy("preemptive")
	require.NoError(t, err)
	assert.Equal(t, Preemptive, s)
	s, err = ParseStrategy("tiered-peak")
	require.NoError(t, err)
	assert.Equal(t, TieredPeak, s)
	_, err = ParseStrategy("random")
	assert.Error(t, err)
}

func TestPeak(t *testing.T) {
	slots := []model.TimeSlot{
		{Start: at(10, 0), End: at(12, 0)},
		{Start: at(11, 0), End: at(13, 0)},
		{Start: at(12, 0), End: at(14, 0)},
	}
	assert.Equal(t, 2, Peak(slots, model.TimeSlot{Start: at(9, 0), End: at(15, 0)}))
	assert.Equal(t, 1, Peak(slots, model.TimeSlot{Start: at(10, 0), End: at(11, 0)}))
	assert.Equal(t, 0, Peak(slots, model.TimeSlot{Start: at(14, 0), End: at(15, 0)}))

	assert.Equal(t, 3, Overlapping(slots, model.TimeSlot{Start: at(9, 0), End: at(15, 0)}))
	assert.Equal(t, 1, Overlapping(slots, model.TimeSlot{Start: at(10, 0), End: at(11, 0)}))
	assert.Equal(t, 0, Overlapping(slots, model.TimeSlot{Start: at(14, 0), End: at(15, 0)}))
}
