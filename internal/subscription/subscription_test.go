// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpr(t *testing.T) {
	lit := ParseExpr("  Lakers ")
	assert.False(t, lit.Regex)
	assert.Equal(t, "Lakers", lit.Literal)

	re := ParseExpr("/^lakers/i")
	assert.True(t, re.Regex)
	assert.True(t, re.CaseInsensitive)
	assert.True(t, re.MatchRegex("LAKERS vs Celtics"))

	cs := ParseExpr("/^Lakers/")
	assert.False(t, cs.MatchRegex("lakers vs celtics"))

	slashy := ParseExpr("AC/DC")
	assert.False(t, slashy.Regex)

	badFlags := ParseExpr("/foo/x")
	assert.False(t, badFlags.Regex, "unknown flags fall back to a literal")
}

func TestParseExpr_InvalidRegexNeverMatches(t *testing.T) {
	e := ParseExpr("/([unclosed/")
	require.Error(t, e.Err())
	assert.True(t, e.Regex)
	assert.NotPanics(t, func() {
		assert.False(t, e.MatchRegex("([unclosed"))
		assert.False(t, e.Contains("anything", "anything"))
	})
}

func TestDefinition_ValidateAndCompile(t *testing.T) {
	disabled := false
	defs := []Definition{
		{ID: "lakers", Kind: KindTeam, Match: "Lakers"},
		{ID: "bad", Kind: KindLeague, Match: "/(/", Exclude: []string{"/[/"}, Enabled: &disabled},
	}
	require.NoError(t, defs[0].Validate())
	assert.ErrorIs(t, Definition{ID: "x", Kind: "sport", Match: "a"}.Validate(), ErrInvalidDefinition)
	assert.ErrorIs(t, Definition{ID: "x", Kind: KindTeam}.Validate(), ErrInvalidDefinition)
	assert.ErrorIs(t, Definition{Kind: KindTeam, Match: "a"}.Validate(), ErrInvalidDefinition)
	assert.ErrorIs(t, Definition{ID: "x", Kind: KindTeam, Match: "a", Rank: -1}.Validate(), ErrInvalidDefinition)

	subs, errs := CompileAll(defs)
	require.Len(t, subs, 2)
	assert.Len(t, errs, 2)
	assert.True(t, subs[0].Enabled)
	assert.Equal(t, "Lakers", subs[0].Name)
	assert.False(t, subs[1].Enabled)
}

func TestOrdered(t *testing.T) {
	subs := []Subscription{
		{ID: "b", Rank: 1, Enabled: true},
		{ID: "z", Rank: 0, Enabled: true},
		{ID: "a", Rank: 1, Enabled: true},
		{ID: "off", Rank: 0, Enabled: false},
	}
	got := Ordered(subs)
	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"z", "a", "b"}, ids)
}

func TestLiveHeuristic(t *testing.T) {
	h, err := CompileLiveRules([]LiveRule{
		{Name: "us-primetime", Channel: "ESPN", From: "23:00", To: "05:00", Live: true},
		{Name: "overnight-reruns", From: "02:00", To: "06:00", Live: false},
	})
	require.NoError(t, err)

	late := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)
	live, rule, ok := h.Evaluate("ESPN HD", late)
	assert.True(t, ok)
	assert.True(t, live)
	assert.Equal(t, "us-primetime", rule)

	live, rule, ok = h.Evaluate("Other", late.Add(2*time.Hour))
	assert.True(t, ok)
	assert.False(t, live)
	assert.Equal(t, "overnight-reruns", rule)

	_, _, ok = h.Evaluate("Other", time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	_, err = CompileLiveRules([]LiveRule{{Name: "bad", From: "25:99", To: "01:00"}})
	assert.Error(t, err)
	_, err = CompileLiveRules([]LiveRule{{Name: "bad-tz", From: "01:00", To: "02:00", Timezone: "Mars/Olympus"}})
	assert.Error(t, err)

	var nilH *LiveHeuristic
	_, _, ok = nilH.Evaluate("x", late)
	assert.False(t, ok)
}
