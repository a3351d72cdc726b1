// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package classify

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClassifier() *Classifier {
	return New(nil, WithReferenceTime(refTime))
}

func TestScore_LiveGameOnSportsChannel(t *testing.T) {
	c := newTestClassifier()

	r := c.Score("Lakers vs Celtics", "ESPN", "", false)

	assert.True(t, r.HasMatchup)
	assert.True(t, r.OnSportsChannel)
	assert.Equal(t, "NBA", r.League)
	assert.Equal(t, "Los Angeles Lakers", r.Participant1)
	assert.Equal(t, "Boston Celtics", r.Participant2)
	assert.Equal(t, WeightTitleMatchup+WeightRosterPair+WeightSportsChannel, r.Score)
	assert.True(t, r.IsLikelyGame())
}

func TestScore_ClassicArchivalGame(t *testing.T) {
	c := newTestClassifier()

	r := c.Score("NBA Classic: 1998 Finals Game 6", "ESPN Classic", "", false)

	assert.True(t, r.IsReplay)
	assert.Contains(t, r.Signals, "replay-50")
	assert.Contains(t, r.Signals, "leading_year-40")
	assert.Contains(t, r.Signals, "league_keyword+15")
	assert.Contains(t, r.Signals, "sports_channel+20")
	assert.False(t, r.IsLikelyGame())
}

func TestScore_Deterministic(t *testing.T) {
	c := newTestClassifier()
	inputs := []struct {
		title, channel, desc string
		hint                 bool
	}{
		{"Lakers vs Celtics", "ESPN", "", false},
		{"UFC 300: Pereira vs Hill", "DAZN", "Main card", true},
		{"Premier League: Arsenal v Chelsea", "Sky Sports", "Live coverage", true},
		{"Evening News", "BBC One", "", false},
		{"", "", "", false},
	}
	for _, in := range inputs {
		a := c.Score(in.title, in.channel, in.desc, in.hint)
		b := c.Score(in.title, in.channel, in.desc, in.hint)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("Score(%q) not deterministic (-first +second):\n%s", in.title, diff)
		}
		if a.IsLikelyGame() {
			assert.True(t, a.IsPossibleGame())
		}
	}
}

func TestScore_SeasonRanges(t *testing.T) {
	c := newTestClassifier()

	current := c.Score("NBA 2024-25: Lakers vs Celtics", "ESPN", "", false)
	assert.NotContains(t, current.Signals, "past_season-35")

	slash := c.Score("Bundesliga 2024/2025: Bayern vs Dortmund", "Sky Sport", "", false)
	assert.NotContains(t, slash.Signals, "past_season-35")

	past := c.Score("NBA 2022-23 Season: Lakers vs Celtics", "ESPN", "", false)
	assert.Contains(t, past.Signals, "past_season-35")

	pastLong := c.Score("Premier League 2021/2022 Review", "Sky Sports", "", false)
	assert.Contains(t, pastLong.Signals, "past_season-35")

	notSeason := c.Score("Arsenal v Chelsea 2025-03-01", "Sky Sports", "", false)
	assert.NotContains(t, notSeason.Signals, "past_season-35")
}

func TestScore_PrePostShowNeverLikely(t *testing.T) {
	c := newTestClassifier()

	r := c.Score("NBA Pregame: Lakers vs Celtics", "ESPN", "", true)

	assert.True(t, r.IsPrePostShow)
	assert.GreaterOrEqual(t, r.Score, LikelyThreshold)
	assert.False(t, r.IsLikelyGame())
}

func TestScore_FightCard(t *testing.T) {
	c := newTestClassifier()

	live := c.Score("UFC 300: Pereira vs Hill", "ESPN", "", false)
	assert.Contains(t, live.Signals, "fight_card+35")
	assert.True(t, live.IsLikelyGame())

	fn := c.Score("UFC Fight Night 240", "ESPN", "", false)
	assert.Contains(t, fn.Signals, "fight_card+35")

	countdown := c.Score("UFC 300 Countdown", "ESPN", "", false)
	assert.Contains(t, countdown.Signals, "fight_card_not_live-20")
	assert.NotContains(t, countdown.Signals, "fight_card+35")
	assert.False(t, countdown.IsLikelyGame())

	replay := c.Score("UFC 229: Full Fight", "ESPN", "", false)
	assert.Contains(t, replay.Signals, "fight_card_not_live-20")
}

func TestScore_Penalties(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name   string
		title  string
		desc   string
		signal string
	}{
		{"parenthesized year", "Super Bowl XXXII (1998)", "", "archival_year-30"},
		{"highlights", "NFL Highlights", "", "highlights-40"},
		{"placeholder", "Sports TBA", "", "placeholder-30"},
		{"non sports", "Local News at Ten", "", "non_sports-30"},
		{"encore", "Encore: Lakers vs Celtics", "", "replay-50"},
		{"description replay", "Lakers vs Celtics", "Originally aired May 2008.", "replay-50"},
		{"single participant", "Lakers: The Road Back", "", "single_participant-15"},
		{"description matchup", "NBA Basketball", "Lakers vs Celtics from Crypto.com Arena", "description_matchup+30"},
		{"leading year segment", "NFL Films - 1985 Bears", "", "leading_year-40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Score(tt.title, "", tt.desc, false)
			assert.Contains(t, r.Signals, tt.signal, "signals: %v", r.Signals)
		})
	}
}

func TestScore_CurrentYearIsNotArchival(t *testing.T) {
	c := newTestClassifier()
	r := c.Score("2025 NBA All-Star Game", "TNT", "", true)
	assert.NotContains(t, r.Signals, "leading_year-40")
}

func TestScore_CategoryHint(t *testing.T) {
	c := newTestClassifier()
	without := c.Score("Arsenal v Chelsea", "", "", false)
	with := c.Score("Arsenal v Chelsea", "", "", true)
	assert.Equal(t, WeightCategoryHint, with.Score-without.Score)
}

func TestScore_RosterPairFollowsTextOrder(t *testing.T) {
	c := newTestClassifier()

	r := c.Score("NBA Basketball", "", "Celtics host the Lakers", false)

	assert.False(t, r.HasMatchup)
	assert.Contains(t, r.Signals, "roster_pair+30")
	assert.Equal(t, "Boston Celtics", r.Participant1)
	assert.Equal(t, "Los Angeles Lakers", r.Participant2)
}

func TestExtractMatchup(t *testing.T) {
	tests := []struct {
		in     string
		p1, p2 string
		ok     bool
	}{
		{"Lakers vs Celtics", "Lakers", "Celtics", true},
		{"Lakers vs. Celtics", "Lakers", "Celtics", true},
		{"Arsenal v Chelsea", "Arsenal", "Chelsea", true},
		{"Yankees @ Red Sox", "Yankees", "Red Sox", true},
		{"Bills at Chiefs", "Bills", "Chiefs", true},
		{"NBA: Lakers versus Celtics (Home)", "Lakers", "Celtics", true},
		{"Live at the Apollo", "", "", false},
		{"Evening News", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p1, p2, ok := ExtractMatchup(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.p1, p1)
			assert.Equal(t, tt.p2, p2)
		})
	}
}
