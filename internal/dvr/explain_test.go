package dvr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/subscription"
)

func TestSnapshot_Explain(t *testing.T) {
	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Apply(testConfig(2, teamSub("lakers", "Lakers", 0))))
	snap := catalog.Snapshot()

	got := snap.Explain(game("p1", "ESPN", "Lakers vs Celtics", gameTime), scanNow)
	assert.True(t, got.LikelyGame)
	assert.True(t, got.Classification.HasMatchup)
	assert.Equal(t, subscription.ReasonMatched, got.Decision.Reason)
	assert.Equal(t, "lakers", got.Decision.SubscriptionID)

	got = snap.Explain(game("p2", "ESPN", "Knicks vs Heat", gameTime), scanNow)
	assert.Equal(t, subscription.ReasonNoSubscription, got.Decision.Reason)

	news := game("p3", "CNN", "Evening News", gameTime)
	news.IsLive = false
	got = snap.Explain(news, scanNow)
	assert.False(t, got.PossibleGame)
	assert.Equal(t, ReasonNotSports, got.Decision.Reason)
}

func TestSnapshot_ExplainReadsSubtitle(t *testing.T) {
	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Apply(testConfig(2, teamSub("lakers", "Lakers", 0))))
	snap := catalog.Snapshot()

	p := game("p1", "Local 4", "NBA Basketball", gameTime)
	p.Subtitle = "Lakers vs Celtics"
	got := snap.Explain(p, scanNow)
	assert.True(t, got.Classification.HasMatchup)
	assert.Contains(t, got.Classification.Signals, "description_matchup+30")
	assert.True(t, got.LikelyGame)
	assert.Equal(t, subscription.ReasonMatched, got.Decision.Reason)

	rerun := game("p2", "ESPN", "Lakers vs Celtics", gameTime)
	rerun.Subtitle = "Classic rebroadcast from 2010 Finals"
	got = snap.Explain(rerun, scanNow)
	assert.True(t, got.Classification.IsReplay)
	assert.False(t, got.Decision.Matched())
}

func TestSnapshot_ExplainMatchesLikelyGamesOnly(t *testing.T) {
	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Apply(testConfig(2, subscription.Definition{ID: "nba", Kind: subscription.KindLeague, Match: "NBA"})))
	snap := catalog.Snapshot()

	got := snap.Explain(game("p1", "ESPN", "NBA Basketball", gameTime), scanNow)
	assert.True(t, got.PossibleGame)
	assert.False(t, got.LikelyGame)
	assert.Equal(t, ReasonNotSports, got.Decision.Reason)
}
