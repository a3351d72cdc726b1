// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package dedup collapses broadcasts of the same real-world game into groups.
package dedup

import (
	"sort"

	"github.com/ManuGH/sportsdvr/internal/alias"
	"github.com/ManuGH/sportsdvr/internal/sports"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

// Group is one real-world game: a primary broadcast plus alternates.
type Group struct {
	Primary    subscription.Match
	Alternates []subscription.Match
}

// BackupChannels is the number of alternate broadcasts.
func (g *Group) BackupChannels() int {
	return len(g.Alternates)
}

// Members returns the primary followed by the alternates.
func (g *Group) Members() []subscription.Match {
	out := make([]subscription.Match, 0, 1+len(g.Alternates))
	out = append(out, g.Primary)
	return append(out, g.Alternates...)
}

// Subscription returns the highest-priority subscription among the members.
func (g *Group) Subscription() subscription.Subscription {
	best := g.Primary.Subscription
	for _, m := range g.Alternates {
		s := m.Subscription
		if s.Rank < best.Rank || (s.Rank == best.Rank && s.ID < best.ID) {
			best = s
		}
	}
	return best
}

// EffectivePriority maps subscription rank to a priority where higher wins.
// Team subscriptions get a small bonus over league and event ones at equal rank.
func (g *Group) EffectivePriority() int {
	s := g.Subscription()
	p := 1000 - 10*s.Rank
	if s.Kind == subscription.KindTeam {
		p += 5
	}
	return p
}

// Deduplicator groups matches with an ordered chain of strategies. The first
// strategy returning a verdict other than Unknown decides.
type Deduplicator struct {
	strategies []SameGameStrategy
	tables     *sports.Tables
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithStrategies replaces the default strategy chain.
func WithStrategies(s ...SameGameStrategy) Option {
	return func(d *Deduplicator) {
		d.strategies = s
	}
}

// New returns a Deduplicator using team-set then title-similarity matching.
func New(resolver *alias.Resolver, tables *sports.Tables, opts ...Option) *Deduplicator {
	if tables == nil {
		tables = sports.Default()
	}
	d := &Deduplicator{
		tables: tables,
		strategies: []SameGameStrategy{
			TeamSetStrategy{Resolver: resolver, Window: DefaultTeamSetWindow},
			TitleSimilarityStrategy{Threshold: DefaultSimilarityThreshold, Window: DefaultTitleWindow},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsSameGame reports whether two matches are broadcasts of the same game.
func (d *Deduplicator) IsSameGame(a, b subscription.Match) bool {
	for _, s := range d.strategies {
		switch s.Compare(a, b) {
		case Same:
			return true
		case Different:
			return false
		}
	}
	return false
}

// Group assigns every match to a group, comparing against each group's
// current primary.
func (d *Deduplicator) Group(matches []subscription.Match) []*Group {
	var groups []*Group
	for _, m := range matches {
		var target *Group
		for _, g := range groups {
			if d.IsSameGame(m, g.Primary) {
				target = g
				break
			}
		}
		if target == nil {
			groups = append(groups, &Group{Primary: m})
			continue
		}
		target.Alternates = append(target.Alternates, m)
		d.reselect(target)
	}
	return groups
}

// reselect picks the primary by earliest start, then sports channel, then
// subscription rank, then program ID.
func (d *Deduplicator) reselect(g *Group) {
	members := g.Members()
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if !a.Program.Start.Equal(b.Program.Start) {
			return a.Program.Start.Before(b.Program.Start)
		}
		as, bs := d.onSportsChannel(a), d.onSportsChannel(b)
		if as != bs {
			return as
		}
		if a.Subscription.Rank != b.Subscription.Rank {
			return a.Subscription.Rank < b.Subscription.Rank
		}
		return a.Program.ID < b.Program.ID
	})
	g.Primary = members[0]
	g.Alternates = members[1:]
}

func (d *Deduplicator) onSportsChannel(m subscription.Match) bool {
	return m.Classification.OnSportsChannel || d.tables.IsSportsChannel(m.Program.ChannelName)
}
