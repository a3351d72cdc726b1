// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package subscription resolves classified programs to user subscriptions.
package subscription

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/model"
)

// Kind is the subscription matching rule family.
type Kind string

const (
	KindTeam   Kind = "team"
	KindLeague Kind = "league"
	KindEvent  Kind = "event"
)

// ErrInvalidDefinition is returned for structurally invalid definitions.
var ErrInvalidDefinition = errors.New("invalid subscription")

// Definition is the configuration form of a subscription.
type Definition struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Kind         Kind     `yaml:"kind" json:"kind"`
	Match        string   `yaml:"match" json:"match"`
	Exclude      []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Rank         int      `yaml:"rank" json:"rank"`
	AllowReplays bool     `yaml:"allow_replays,omitempty" json:"allow_replays,omitempty"`
	Enabled      *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// Subscription is a compiled, read-only subscription.
type Subscription struct {
	ID           string
	Name         string
	Kind         Kind
	Match        Expr
	Exclusions   []Expr
	Rank         int
	AllowReplays bool
	Enabled      bool
}

// Validate checks a definition without compiling it.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	switch d.Kind {
	case KindTeam, KindLeague, KindEvent:
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidDefinition, d.ID, d.Kind)
	}
	if strings.TrimSpace(d.Match) == "" {
		return fmt.Errorf("%w: %s: match is required", ErrInvalidDefinition, d.ID)
	}
	if d.Rank < 0 {
		return fmt.Errorf("%w: %s: rank must be >= 0", ErrInvalidDefinition, d.ID)
	}
	return nil
}

// Compile parses the match and exclusion expressions once.
func (d Definition) Compile() Subscription {
	s := Subscription{
		ID:           d.ID,
		Name:         d.Name,
		Kind:         d.Kind,
		Match:        ParseExpr(d.Match),
		Rank:         d.Rank,
		AllowReplays: d.AllowReplays,
		Enabled:      d.Enabled == nil || *d.Enabled,
	}
	if s.Name == "" {
		s.Name = d.Match
	}
	for _, x := range d.Exclude {
		s.Exclusions = append(s.Exclusions, ParseExpr(x))
	}
	return s
}

// CompileAll compiles definitions and collects regex errors. Subscriptions
// with invalid regexes are still returned; they simply never match.
func CompileAll(defs []Definition) ([]Subscription, []error) {
	out := make([]Subscription, 0, len(defs))
	var errs []error
	for _, d := range defs {
		s := d.Compile()
		if err := s.Match.Err(); err != nil {
			errs = append(errs, fmt.Errorf("subscription %s match: %w", s.ID, err))
		}
		for _, x := range s.Exclusions {
			if err := x.Err(); err != nil {
				errs = append(errs, fmt.Errorf("subscription %s exclusion: %w", s.ID, err))
			}
		}
		out = append(out, s)
	}
	return out, errs
}

// Ordered returns the enabled subscriptions sorted by (Rank, ID).
func Ordered(subs []Subscription) []Subscription {
	out := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Enabled {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Match is a program that satisfied a subscription.
type Match struct {
	Program        model.Program
	Classification classify.Result
	Subscription   Subscription
}
