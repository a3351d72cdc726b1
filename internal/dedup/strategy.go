// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dedup

import (
	"strings"
	"time"

	"github.com/ManuGH/sportsdvr/internal/alias"
	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

// Verdict is a strategy's opinion on whether two broadcasts are one game.
type Verdict int

const (
	// Unknown defers to the next strategy in the chain.
	Unknown Verdict = iota
	Same
	Different
)

func (v Verdict) String() string {
	switch v {
	case Same:
		return "same"
	case Different:
		return "different"
	default:
		return "unknown"
	}
}

// SameGameStrategy compares two matched programs. Implementations must be
// symmetric: Compare(a, b) == Compare(b, a).
type SameGameStrategy interface {
	Name() string
	Compare(a, b subscription.Match) Verdict
}

// Default tolerances.
const (
	DefaultTeamSetWindow       = 12 * time.Hour
	DefaultTitleWindow         = 30 * time.Minute
	DefaultSimilarityThreshold = 0.8
)

// TeamSetStrategy compares the canonical participant sets of both programs.
// It only ever confirms a game; anything else defers to the next strategy.
type TeamSetStrategy struct {
	Resolver *alias.Resolver
	Window   time.Duration
}

// Name implements SameGameStrategy.
func (TeamSetStrategy) Name() string { return "team_set" }

// Compare implements SameGameStrategy.
func (s TeamSetStrategy) Compare(a, b subscription.Match) Verdict {
	sa := s.teams(a)
	sb := s.teams(b)
	if len(sa) < 2 || len(sb) < 2 {
		return Unknown
	}
	window := s.Window
	if window <= 0 {
		window = DefaultTeamSetWindow
	}
	if equalSets(sa, sb) && absDuration(a.Program.Start.Sub(b.Program.Start)) <= window {
		return Same
	}
	return Unknown
}

func (s TeamSetStrategy) teams(m subscription.Match) map[string]struct{} {
	p1, p2 := m.Classification.Participant1, m.Classification.Participant2
	if p1 == "" || p2 == "" {
		var ok bool
		if p1, p2, ok = classify.ExtractMatchup(m.Program.Title); !ok {
			return nil
		}
	}
	out := make(map[string]struct{}, 2)
	for _, p := range []string{p1, p2} {
		c := p
		if s.Resolver != nil {
			c = s.Resolver.Canonical(p)
		}
		if k := alias.Key(c); k != "" {
			out[k] = struct{}{}
		}
	}
	return out
}

// TitleSimilarityStrategy compares title word sets by Jaccard index.
type TitleSimilarityStrategy struct {
	Threshold float64
	Window    time.Duration
}

// Name implements SameGameStrategy.
func (TitleSimilarityStrategy) Name() string { return "title_similarity" }

// Compare implements SameGameStrategy.
func (s TitleSimilarityStrategy) Compare(a, b subscription.Match) Verdict {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	window := s.Window
	if window <= 0 {
		window = DefaultTitleWindow
	}
	if absDuration(a.Program.Start.Sub(b.Program.Start)) > window {
		return Unknown
	}
	if Jaccard(a.Program.Title, b.Program.Title) >= threshold {
		return Same
	}
	return Unknown
}

// Jaccard returns |A∩B| / |A∪B| over the folded word sets of two titles.
func Jaccard(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(alias.Key(s)) {
		out[w] = struct{}{}
	}
	return out
}

func equalSets(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
