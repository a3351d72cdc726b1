// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sports holds the immutable lookup tables used to recognize sports
// broadcasts: leagues, team rosters, sports channels, league aliases,
// continental competition families and recording end padding.
//
// Tables are built once and injected; nothing in this package is mutated
// after Default returns.
package sports

import (
	"sort"
	"strings"
	"time"
)

// Sport identifiers.
const (
	Basketball = "basketball"
	Football   = "football" // gridiron
	Baseball   = "baseball"
	Hockey     = "hockey"
	Soccer     = "soccer"
	MMA        = "mma"
	Boxing     = "boxing"
	Motorsport = "motorsport"
	Tennis     = "tennis"
	Golf       = "golf"
	Rugby      = "rugby"
	Cricket    = "cricket"
)

// League describes one competition and the keywords that name it in guide text.
type League struct {
	Code     string
	Sport    string
	Keywords []string
	Women    bool
}

// Team is one roster entry. Name is the canonical display name.
type Team struct {
	Name    string
	League  string
	Aliases []string
}

// LeagueAlias is a sport-scoped synonym group for league subscriptions.
// Term and every expansion only substitute for each other when the program
// belongs to Sport.
type LeagueAlias struct {
	Sport      string
	Term       string
	Expansions []string
}

// Tier is one level of a continental competition family.
type Tier struct {
	Level   int
	Name    string
	Markers []string
}

// Family groups the tiers of related continental club competitions.
type Family struct {
	Name  string
	Tiers []Tier
}

// Tables bundles every lookup table. Use Default for the built-in set.
type Tables struct {
	Leagues         []League
	Teams           []Team
	SportsChannels  []string
	LeagueAliases   []LeagueAlias
	Families        []Family
	SportPadding    map[string]time.Duration
	DefaultPadding  time.Duration
	SportCategories map[string]string // category tag -> sport
	EventCategories []string
	WomenMarkers    []string

	leagueByCode map[string]League
}

// Default returns the built-in tables.
func Default() *Tables {
	t := &Tables{
		Leagues:         defaultLeagues(),
		Teams:           defaultTeams(),
		SportsChannels:  defaultSportsChannels(),
		LeagueAliases:   defaultLeagueAliases(),
		Families:        defaultFamilies(),
		SportPadding:    defaultSportPadding(),
		DefaultPadding:  15 * time.Minute,
		SportCategories: defaultSportCategories(),
		EventCategories: []string{"championship", "final", "finals", "all-star", "all star", "playoff", "playoffs"},
		WomenMarkers:    []string{"women", "women's", "womens", "ladies", "wnba", "nwsl", "wsl", "wta", "frauen", "feminine", "féminine", "femenino"},
	}
	t.index()
	return t
}

func (t *Tables) index() {
	t.leagueByCode = make(map[string]League, len(t.Leagues))
	for _, l := range t.Leagues {
		t.leagueByCode[strings.ToUpper(l.Code)] = l
	}
}

// League looks up a league by code, case-insensitively.
func (t *Tables) League(code string) (League, bool) {
	if t.leagueByCode == nil {
		t.index()
	}
	l, ok := t.leagueByCode[strings.ToUpper(strings.TrimSpace(code))]
	return l, ok
}

// LeagueSport returns the sport of a league code, or "" when unknown.
func (t *Tables) LeagueSport(code string) string {
	if l, ok := t.League(code); ok {
		return l.Sport
	}
	return ""
}

// CategorySport maps a broadcaster category tag to a sport, or "".
func (t *Tables) CategorySport(category string) string {
	return t.SportCategories[strings.ToLower(strings.TrimSpace(category))]
}

// IsSportsCategory reports whether a category tag denotes sports, generic or specific.
func (t *Tables) IsSportsCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return false
	}
	if _, ok := t.SportCategories[c]; ok {
		return true
	}
	return strings.Contains(c, "sport")
}

// IsEventCategory reports whether a category tag marks an inherently live event tier.
func (t *Tables) IsEventCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, e := range t.EventCategories {
		if c == e || strings.Contains(c, e) {
			return true
		}
	}
	return false
}

// IsSportsChannel reports whether a channel display name is a known sports channel.
func (t *Tables) IsSportsChannel(channel string) bool {
	c := strings.ToLower(strings.TrimSpace(channel))
	if c == "" {
		return false
	}
	for _, s := range t.SportsChannels {
		if strings.Contains(c, s) {
			return true
		}
	}
	return false
}

// Roster returns the teams of one league.
func (t *Tables) Roster(league string) []Team {
	var out []Team
	for _, tm := range t.Teams {
		if strings.EqualFold(tm.League, league) {
			out = append(out, tm)
		}
	}
	return out
}

// RosterLeagues returns the league codes that have at least one team, sorted.
func (t *Tables) RosterLeagues() []string {
	seen := map[string]struct{}{}
	for _, tm := range t.Teams {
		seen[tm.League] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// TeamAliases returns canonical name -> aliases for every roster team.
func (t *Tables) TeamAliases() map[string][]string {
	out := make(map[string][]string, len(t.Teams))
	for _, tm := range t.Teams {
		out[tm.Name] = append(out[tm.Name], tm.Aliases...)
	}
	return out
}

// EndPadding returns the post-program padding for a detected league or, failing
// that, the first category tag naming a sport.
func (t *Tables) EndPadding(league string, categories []string) time.Duration {
	if sport := t.LeagueSport(league); sport != "" {
		if d, ok := t.SportPadding[sport]; ok {
			return d
		}
	}
	for _, c := range categories {
		if sport := t.CategorySport(c); sport != "" {
			if d, ok := t.SportPadding[sport]; ok {
				return d
			}
		}
	}
	return t.DefaultPadding
}
