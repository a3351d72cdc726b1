// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/sportsdvr/internal/alias"
)

// LiveRule is one row of the region/time-of-day heuristic table. It is only
// consulted for programs without explicit live signals and without categories.
type LiveRule struct {
	Name     string `yaml:"name" json:"name"`
	Channel  string `yaml:"channel,omitempty" json:"channel,omitempty"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	Live     bool   `yaml:"live" json:"live"`
}

type liveRule struct {
	name    string
	channel string
	from    int
	to      int
	loc     *time.Location
	live    bool
}

// LiveHeuristic evaluates compiled live rules in order; the first match decides.
type LiveHeuristic struct {
	rules []liveRule
}

// CompileLiveRules validates and compiles the heuristic table.
func CompileLiveRules(defs []LiveRule) (*LiveHeuristic, error) {
	h := &LiveHeuristic{}
	for i, d := range defs {
		from, err := parseClock(d.From)
		if err != nil {
			return nil, fmt.Errorf("live rule %d (%s): from: %w", i, d.Name, err)
		}
		to, err := parseClock(d.To)
		if err != nil {
			return nil, fmt.Errorf("live rule %d (%s): to: %w", i, d.Name, err)
		}
		loc := time.UTC
		if d.Timezone != "" {
			loc, err = time.LoadLocation(d.Timezone)
			if err != nil {
				return nil, fmt.Errorf("live rule %d (%s): timezone: %w", i, d.Name, err)
			}
		}
		h.rules = append(h.rules, liveRule{
			name:    d.Name,
			channel: alias.Key(d.Channel),
			from:    from,
			to:      to,
			loc:     loc,
			live:    d.Live,
		})
	}
	return h, nil
}

// Evaluate returns (live, matched rule name, ok). ok is false when no rule applies.
func (h *LiveHeuristic) Evaluate(channel string, start time.Time) (bool, string, bool) {
	if h == nil {
		return false, "", false
	}
	ch := alias.Key(channel)
	for _, r := range h.rules {
		if r.channel != "" && !strings.Contains(ch, r.channel) {
			continue
		}
		local := start.In(r.loc)
		m := local.Hour()*60 + local.Minute()
		var in bool
		if r.from <= r.to {
			in = m >= r.from && m < r.to
		} else {
			in = m >= r.from || m < r.to
		}
		if in {
			return r.live, r.name, true
		}
	}
	return false, "", false
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q (want HH:MM)", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
