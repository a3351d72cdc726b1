// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package subscription

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/alias"
	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/sports"
)

var start = time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)

type fixture struct {
	classifier *classify.Classifier
	matcher    *Matcher
}

func newFixture(t *testing.T, opts ...MatcherOption) fixture {
	t.Helper()
	tables := sports.Default()
	return fixture{
		classifier: classify.New(tables, classify.WithReferenceTime(start)),
		matcher:    NewMatcher(alias.New(tables.TeamAliases(), nil), tables, opts...),
	}
}

func (f fixture) match(p model.Program, subs ...Definition) (Match, Decision) {
	compiled, _ := CompileAll(subs)
	desc := strings.TrimSpace(p.Subtitle + " " + p.Description)
	c := f.classifier.Score(p.Title, p.ChannelName, desc, len(p.Categories) > 0)
	return f.matcher.Match(p, c, compiled)
}

func program(title string, mods ...func(*model.Program)) model.Program {
	p := model.Program{
		ID:          "p1",
		ChannelID:   "espn",
		ChannelName: "ESPN",
		Title:       title,
		Start:       start,
		End:         start.Add(150 * time.Minute),
		IsLive:      true,
	}
	for _, m := range mods {
		m(&p)
	}
	return p
}

func TestMatch_TeamWithAliases(t *testing.T) {
	f := newFixture(t)

	m, d := f.match(program("Lakers vs Celtics"), Definition{ID: "lal", Kind: KindTeam, Match: "Los Angeles Lakers"})
	require.True(t, d.Matched(), "decision: %+v", d)
	assert.Equal(t, "lal", m.Subscription.ID)

	_, d = f.match(program("LA Lakers at Boston"), Definition{ID: "lal", Kind: KindTeam, Match: "Lakers"})
	assert.True(t, d.Matched())
}

func TestMatch_ShortAliasNeedsWordBoundary(t *testing.T) {
	f := newFixture(t)

	_, d := f.match(program("Bills vs Chiefs"), Definition{ID: "om", Kind: KindTeam, Match: "OM"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(program("Ligue 1: PSG vs OM"), Definition{ID: "om", Kind: KindTeam, Match: "OM"})
	assert.True(t, d.Matched())
}

func TestMatch_RankOrder(t *testing.T) {
	f := newFixture(t)

	m, d := f.match(program("Lakers vs Celtics"),
		Definition{ID: "celtics", Kind: KindTeam, Match: "Celtics", Rank: 1},
		Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers", Rank: 0},
		Definition{ID: "nba", Kind: KindLeague, Match: "NBA", Rank: 2},
	)
	require.True(t, d.Matched())
	assert.Equal(t, "lakers", m.Subscription.ID)
}

func TestMatch_LeagueWordBoundary(t *testing.T) {
	f := newFixture(t)

	_, d := f.match(program("Accenture Match Play Championship", func(p *model.Program) {
		p.Categories = []string{"Golf"}
	}), Definition{ID: "acc", Kind: KindLeague, Match: "ACC"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(program("WNBA: Aces vs Liberty"), Definition{ID: "nba", Kind: KindLeague, Match: "NBA"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(program("NBA Basketball: Lakers vs Celtics"), Definition{ID: "nba", Kind: KindLeague, Match: "NBA"})
	assert.True(t, d.Matched())
}

func TestMatch_LeagueIgnoresChannelName(t *testing.T) {
	f := newFixture(t)

	_, d := f.match(program("Lakers vs Celtics", func(p *model.Program) {
		p.ChannelName = "NBA TV"
	}), Definition{ID: "nba", Kind: KindLeague, Match: "NBA TV"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)
}

func TestMatch_LeagueAliasesAreSportScoped(t *testing.T) {
	f := newFixture(t)

	basketball := program("College Basketball: Duke vs North Carolina", func(p *model.Program) {
		p.Categories = []string{"Basketball"}
	})
	_, d := f.match(basketball, Definition{ID: "ncaab", Kind: KindLeague, Match: "NCAAB"})
	assert.True(t, d.Matched(), "decision: %+v", d)

	_, d = f.match(basketball, Definition{ID: "ncaa", Kind: KindLeague, Match: "NCAA"})
	assert.True(t, d.Matched(), "decision: %+v", d)

	_, d = f.match(basketball, Definition{ID: "cfb", Kind: KindLeague, Match: "NCAAF"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	football := program("College Football: Alabama vs Georgia", func(p *model.Program) {
		p.Categories = []string{"American Football"}
	})
	_, d = f.match(football, Definition{ID: "cbb", Kind: KindLeague, Match: "NCAAB"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)
	_, d = f.match(football, Definition{ID: "cfb", Kind: KindLeague, Match: "NCAAF"})
	assert.True(t, d.Matched())
}

func TestMatch_WomenVeto(t *testing.T) {
	f := newFixture(t)
	p := program("UEFA Women's Champions League: Lyon vs Barcelona")

	_, d := f.match(p, Definition{ID: "ucl", Kind: KindLeague, Match: "Champions League"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(p, Definition{ID: "uwcl", Kind: KindLeague, Match: "Women's Champions League"})
	assert.True(t, d.Matched())
}

func TestMatch_ContinentalTierVeto(t *testing.T) {
	f := newFixture(t)

	_, d := f.match(program("Champions League Path to Europa League Playoff: Ajax vs Porto"),
		Definition{ID: "ucl", Kind: KindLeague, Match: "Champions League"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(program("Champions League: Real Madrid vs Manchester City"),
		Definition{ID: "ucl", Kind: KindLeague, Match: "Champions League"})
	assert.True(t, d.Matched())
}

func TestMatch_EventSubstring(t *testing.T) {
	f := newFixture(t)
	_, d := f.match(program("Super Bowl LIX: Chiefs vs Eagles"), Definition{ID: "sb", Kind: KindEvent, Match: "super bowl"})
	assert.True(t, d.Matched())
}

func TestMatch_Vetoes(t *testing.T) {
	f := newFixture(t)

	_, d := f.match(program("Lakers vs Celtics", func(p *model.Program) { p.Description = "Spanish language broadcast" }),
		Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers", Exclude: []string{"spanish"}},
		Definition{ID: "nba", Kind: KindLeague, Match: "NBA", Rank: 1},
	)
	assert.Equal(t, ReasonExcluded, d.Reason)

	_, d = f.match(program("NBA Pregame: Lakers vs Celtics"), Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers"})
	assert.Equal(t, ReasonPrePostShow, d.Reason)

	replay := program("Lakers vs Celtics", func(p *model.Program) {
		p.IsLive = false
		p.IsRepeat = true
	})
	_, d = f.match(replay, Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers"})
	assert.Equal(t, ReasonReplay, d.Reason)

	liveReplay := program("Lakers vs Celtics", func(p *model.Program) {
		p.IsRepeat = true
		p.Categories = []string{"Basketball"}
	})
	m, d := f.match(liveReplay,
		Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers"},
		Definition{ID: "lakers-all", Kind: KindTeam, Match: "Lakers", Rank: 1, AllowReplays: true},
	)
	require.True(t, d.Matched())
	assert.Equal(t, "lakers-all", m.Subscription.ID)
}

func TestMatch_AllowedReplayStillNeedsLiveSignal(t *testing.T) {
	f := newFixture(t)
	sub := Definition{ID: "lakers-all", Kind: KindTeam, Match: "Lakers", AllowReplays: true}

	_, d := f.match(program("Lakers vs Celtics (Encore)", func(p *model.Program) { p.IsLive = false }), sub)
	assert.Equal(t, ReasonNotLive, d.Reason)
	assert.Equal(t, "lakers-all", d.SubscriptionID)

	_, d = f.match(program("Lakers vs Celtics (Encore)"), sub)
	assert.True(t, d.Matched(), "broadcaster live flag")
}

func TestMatch_RegexLeagueVetoes(t *testing.T) {
	f := newFixture(t)

	_, d := f.match(program("WNBA: Aces vs Liberty"), Definition{ID: "nba", Kind: KindLeague, Match: "/NBA/"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(program("WNBA: Aces vs Liberty"), Definition{ID: "wnba", Kind: KindLeague, Match: "/WNBA/"})
	assert.True(t, d.Matched(), "decision: %+v", d)

	_, d = f.match(program("Champions League Path to Europa League Playoff: Ajax vs Porto"),
		Definition{ID: "ucl", Kind: KindLeague, Match: "/Champions League/i"})
	assert.Equal(t, ReasonNoSubscription, d.Reason)

	_, d = f.match(program("NBA Basketball: Lakers vs Celtics"), Definition{ID: "nba", Kind: KindLeague, Match: "/NBA/"})
	assert.True(t, d.Matched())
}

func TestMatch_InvalidRegexDoesNotMatch(t *testing.T) {
	f := newFixture(t)
	assert.NotPanics(t, func() {
		_, d := f.match(program("Lakers vs Celtics"),
			Definition{ID: "broken", Kind: KindTeam, Match: "/(Lakers/"},
			Definition{ID: "ok", Kind: KindTeam, Match: "/lakers/i", Exclude: []string{"/[/"}, Rank: 1},
		)
		assert.True(t, d.Matched())
		assert.Equal(t, "ok", d.SubscriptionID)
	})
}

func TestMatch_LiveGate(t *testing.T) {
	f := newFixture(t)
	sub := Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers"}
	notFlagged := func(p *model.Program) { p.IsLive = false }

	_, d := f.match(program("Lakers vs Celtics", notFlagged), sub)
	assert.Equal(t, ReasonNotLive, d.Reason)

	_, d = f.match(program("Lakers vs Celtics (Live)", notFlagged), sub)
	assert.True(t, d.Matched())

	_, d = f.match(program("Lakers vs Celtics", notFlagged, func(p *model.Program) {
		p.Categories = []string{"Basketball"}
	}), sub)
	assert.True(t, d.Matched(), "sport category + matchup")

	_, d = f.match(program("Lakers Championship Parade", notFlagged, func(p *model.Program) {
		p.Categories = []string{"Championship"}
	}), sub)
	assert.True(t, d.Matched(), "event-tier category")

	_, d = f.match(program("Lakers Magazine", notFlagged, func(p *model.Program) {
		p.Categories = []string{"Basketball"}
	}), sub)
	assert.Equal(t, ReasonNotLive, d.Reason, "sport category without matchup")
}

func TestMatch_LiveHeuristicSecondarySignal(t *testing.T) {
	h, err := CompileLiveRules([]LiveRule{{Name: "evening", Channel: "espn", From: "18:00", To: "23:00", Live: true}})
	require.NoError(t, err)
	f := newFixture(t, WithLiveHeuristic(h))
	sub := Definition{ID: "lakers", Kind: KindTeam, Match: "Lakers"}

	_, d := f.match(program("Lakers vs Celtics", func(p *model.Program) { p.IsLive = false }), sub)
	assert.True(t, d.Matched())

	_, d = f.match(program("Lakers vs Celtics", func(p *model.Program) {
		p.IsLive = false
		p.Start = start.Add(-12 * time.Hour)
	}), sub)
	assert.Equal(t, ReasonNotLive, d.Reason)

	_, d = f.match(program("Lakers Magazine", func(p *model.Program) {
		p.IsLive = false
		p.Categories = []string{"Basketball"}
	}), sub)
	assert.Equal(t, ReasonNotLive, d.Reason, "category tags disable the heuristic")
}

func TestIsLive(t *testing.T) {
	f := newFixture(t)
	p := program("Lakers vs Celtics")
	assert.True(t, f.matcher.IsLive(p, classify.Result{}))
	p.IsLive = false
	assert.False(t, f.matcher.IsLive(p, classify.Result{}))
}
