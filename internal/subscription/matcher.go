// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package subscription

import (
	"strings"

	"github.com/ManuGH/sportsdvr/internal/alias"
	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/sports"
)

// Reason names the outcome of a match attempt.
type Reason string

const (
	ReasonMatched        Reason = "matched"
	ReasonNoSubscription Reason = "no_subscription"
	ReasonExcluded       Reason = "excluded"
	ReasonPrePostShow    Reason = "pre_post_show"
	ReasonReplay         Reason = "replay"
	ReasonNotLive        Reason = "not_live"
)

// Decision explains the result of Match.
type Decision struct {
	Reason         Reason `json:"reason"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Detail         string `json:"detail,omitempty"`
}

// Matched reports whether a subscription accepted the program.
func (d Decision) Matched() bool {
	return d.Reason == ReasonMatched
}

// Matcher decides which subscription a classified program satisfies.
type Matcher struct {
	resolver *alias.Resolver
	tables   *sports.Tables
	live     *LiveHeuristic
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLiveHeuristic installs the secondary region/time-of-day live signal.
func WithLiveHeuristic(h *LiveHeuristic) MatcherOption {
	return func(m *Matcher) {
		m.live = h
	}
}

// NewMatcher builds a Matcher. A nil tables value uses sports.Default.
func NewMatcher(resolver *alias.Resolver, tables *sports.Tables, opts ...MatcherOption) *Matcher {
	if tables == nil {
		tables = sports.Default()
	}
	if resolver == nil {
		resolver = alias.New(tables.TeamAliases(), nil)
	}
	m := &Matcher{resolver: resolver, tables: tables}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// programText holds the raw and folded views of one program.
type programText struct {
	searchRaw    string
	search       string
	leagueRaw    string
	league       string
	liveText     string
	sport        string
	hasMatchupTS bool
}

func (m *Matcher) texts(p model.Program, c classify.Result) programText {
	cats := strings.Join(p.Categories, " ")
	t := programText{
		searchRaw: strings.Join([]string{p.Title, p.Subtitle, p.Description, p.ChannelName, cats}, "\n"),
		leagueRaw: strings.Join([]string{p.Title, p.Subtitle, cats}, "\n"),
	}
	t.search = alias.Key(t.searchRaw)
	t.league = alias.Key(t.leagueRaw)
	t.liveText = alias.Key(p.Title + " " + p.Subtitle + " " + p.Description)
	t.sport = m.tables.LeagueSport(c.League)
	if t.sport == "" {
		for _, cat := range p.Categories {
			if s := m.tables.CategorySport(cat); s != "" {
				t.sport = s
				break
			}
		}
	}
	_, _, inTitle := classify.ExtractMatchup(p.Title)
	_, _, inSubtitle := classify.ExtractMatchup(p.Subtitle)
	t.hasMatchupTS = inTitle || inSubtitle
	return t
}

// Match returns the first subscription, in (Rank, ID) order, that the program
// satisfies. Exclusions, pre/post shows and the live-content gate veto the
// program outright; a replay only skips subscriptions that do not allow replays.
func (m *Matcher) Match(p model.Program, c classify.Result, subs []Subscription) (Match, Decision) {
	t := m.texts(p, c)
	replay := c.IsReplay || p.IsRepeat
	last := Decision{Reason: ReasonNoSubscription}

	for _, s := range Ordered(subs) {
		if !m.matches(s, p, c, t) {
			continue
		}
		for _, x := range s.Exclusions {
			if x.Contains(t.searchRaw, t.search) {
				return Match{}, Decision{Reason: ReasonExcluded, SubscriptionID: s.ID, Detail: x.Raw}
			}
		}
		if c.IsPrePostShow {
			return Match{}, Decision{Reason: ReasonPrePostShow, SubscriptionID: s.ID}
		}
		if replay && !s.AllowReplays {
			last = Decision{Reason: ReasonReplay, SubscriptionID: s.ID}
			continue
		}
		if ok, detail := m.isLive(p, t); !ok {
			return Match{}, Decision{Reason: ReasonNotLive, SubscriptionID: s.ID, Detail: detail}
		}
		return Match{Program: p, Classification: c, Subscription: s}, Decision{Reason: ReasonMatched, SubscriptionID: s.ID}
	}
	return Match{}, last
}

func (m *Matcher) matches(s Subscription, p model.Program, c classify.Result, t programText) bool {
	if s.Match.Empty() {
		return false
	}
	switch s.Kind {
	case KindTeam:
		return m.matchTeam(s, c, t)
	case KindLeague:
		return m.matchLeague(s, c, t)
	case KindEvent:
		return s.Match.Contains(t.searchRaw, t.search)
	}
	return false
}

func (m *Matcher) matchTeam(s Subscription, c classify.Result, t programText) bool {
	if s.Match.Regex {
		return s.Match.MatchRegex(t.searchRaw)
	}
	for _, a := range m.resolver.Aliases(s.Match.Literal) {
		k := alias.Key(a)
		if k == "" {
			continue
		}
		if len([]rune(k)) <= 3 {
			if alias.HasPhrase(t.search, k) {
				return true
			}
			continue
		}
		if strings.Contains(t.search, k) {
			return true
		}
	}
	lit := alias.Key(s.Match.Literal)
	for _, part := range c.Participants() {
		if m.resolver.Equivalent(part, s.Match.Literal) {
			return true
		}
		pk := alias.Key(part)
		if len(pk) < 4 || len(lit) < 4 {
			continue
		}
		if strings.Contains(pk, lit) || strings.Contains(lit, pk) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchLeague(s Subscription, c classify.Result, t programText) bool {
	if s.Match.Regex {
		if !s.Match.MatchRegex(t.leagueRaw) {
			return false
		}
	} else if !m.leagueWords(s.Match.Literal, t) {
		return false
	}
	if m.womenVeto(s, c, t) {
		return false
	}
	return !m.tierVeto(s, t)
}

func allWords(folded, phrase string) bool {
	words := strings.Fields(alias.Key(phrase))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !alias.HasPhrase(folded, w) {
			return false
		}
	}
	return true
}

func (m *Matcher) leagueWords(literal string, t programText) bool {
	if allWords(t.league, literal) {
		return true
	}
	key := alias.Key(literal)
	groups := m.aliasGroups(key)
	if len(groups) == 0 {
		return false
	}
	ambiguous := false
	for _, g := range groups[1:] {
		if g.Sport != groups[0].Sport {
			ambiguous = true
		}
	}
	for _, g := range groups {
		if t.sport != g.Sport && (t.sport != "" || ambiguous) {
			continue
		}
		for _, phrase := range append([]string{g.Term}, g.Expansions...) {
			if allWords(t.league, phrase) {
				return true
			}
		}
	}
	return false
}

func (m *Matcher) aliasGroups(key string) []sports.LeagueAlias {
	var out []sports.LeagueAlias
	for _, la := range m.tables.LeagueAliases {
		if alias.Key(la.Term) == key {
			out = append(out, la)
			continue
		}
		for _, e := range la.Expansions {
			if alias.Key(e) == key {
				out = append(out, la)
				break
			}
		}
	}
	return out
}

func (m *Matcher) hasWomenMarker(folded string) bool {
	for _, w := range m.tables.WomenMarkers {
		if alias.HasPhrase(folded, w) {
			return true
		}
	}
	return false
}

func (m *Matcher) womenVeto(s Subscription, c classify.Result, t programText) bool {
	programWomen := m.hasWomenMarker(t.league)
	if l, ok := m.tables.League(c.League); ok && l.Women {
		programWomen = true
	}
	if !programWomen {
		return false
	}
	subText := alias.Key(s.Match.Raw + " " + s.Name)
	if m.hasWomenMarker(subText) {
		return false
	}
	return true
}

func (m *Matcher) tierVeto(s Subscription, t programText) bool {
	subText := alias.Key(s.Match.Raw)
	for _, fam := range m.tables.Families {
		subTier := -1
		for i, tier := range fam.Tiers {
			for _, mk := range tier.Markers {
				if alias.HasPhrase(subText, mk) {
					subTier = i
				}
			}
		}
		if subTier < 0 {
			continue
		}
		for i, tier := range fam.Tiers {
			if i == subTier {
				continue
			}
			for _, mk := range tier.Markers {
				if alias.HasPhrase(t.search, mk) {
					return true
				}
			}
		}
	}
	return false
}

// isLive applies the live-content gate. detail names the failing check.
func (m *Matcher) isLive(p model.Program, t programText) (bool, string) {
	if p.IsLive {
		return true, ""
	}
	if alias.HasPhrase(t.liveText, "live") {
		return true, ""
	}
	if p.HasCategories() {
		for _, cat := range p.Categories {
			if m.tables.IsEventCategory(cat) {
				return true, ""
			}
		}
		if t.hasMatchupTS {
			for _, cat := range p.Categories {
				if m.tables.CategorySport(cat) != "" {
					return true, ""
				}
			}
		}
		return false, "no live signal in categories"
	}
	if live, rule, ok := m.live.Evaluate(p.ChannelName, p.Start); ok {
		if live {
			return true, ""
		}
		return false, "heuristic rule " + rule
	}
	return false, "no live signal"
}

// IsLive exposes the live-content gate for reporting and tooling.
func (m *Matcher) IsLive(p model.Program, c classify.Result) bool {
	ok, _ := m.isLive(p, m.texts(p, c))
	return ok
}
