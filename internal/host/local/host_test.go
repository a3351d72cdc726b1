package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/epg"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/store"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

var tipoff = time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)

type staticSource []model.Program

func (s staticSource) FetchPrograms(context.Context, time.Time, time.Time) ([]model.Program, error) {
	return s, nil
}

type failingBook struct{ store.TimerBook }

func (failingBook) ListTimers(context.Context) ([]model.ExistingTimer, error) {
	return nil, errors.New("disk full")
}

func request(channel string, start time.Time) dvr.TimerRequest {
	return dvr.TimerRequest{
		Program:      model.Program{ID: channel + "-1", ChannelID: channel, Title: "Lakers vs Celtics", Start: start, End: start.Add(150 * time.Minute)},
		StartPadding: 2 * time.Minute,
		EndPadding:   20 * time.Minute,
		Overview:     "[sportsdvr] Lakers | NBA | backups: 0",
	}
}

func TestHost_CreateListCancel(t *testing.T) {
	book := store.NewMemoryStore()
	h := New(staticSource{}, book)
	h.newID = func() string { return "t1" }
	ctx := context.Background()

	id, err := h.CreateTimer(ctx, request("espn", tipoff))
	require.NoError(t, err)
	assert.Equal(t, "t1", id)

	timers, err := h.FetchTimers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, model.ExistingTimer{
		ID:        "t1",
		Name:      "Lakers vs Celtics",
		ChannelID: "espn",
		Start:     tipoff.Add(-2 * time.Minute),
		End:       tipoff.Add(170 * time.Minute),
		Overview:  "[sportsdvr] Lakers | NBA | backups: 0",
	}, timers[0])

	require.NoError(t, h.CancelTimer(ctx, "t1"))
	require.NoError(t, h.CancelTimer(ctx, "t1"), "unknown ids are ignored")
	timers, err = h.FetchTimers(ctx)
	require.NoError(t, err)
	assert.Empty(t, timers)
}

func TestHost_ConflictOnSameChannel(t *testing.T) {
	h := New(staticSource{}, store.NewMemoryStore())
	ctx := context.Background()

	_, err := h.CreateTimer(ctx, request("espn", tipoff))
	require.NoError(t, err)

	_, err = h.CreateTimer(ctx, request("espn", tipoff.Add(time.Hour)))
	assert.ErrorIs(t, err, dvr.ErrTimerConflict)

	_, err = h.CreateTimer(ctx, request("tnt", tipoff))
	assert.NoError(t, err, "other channels do not conflict")
}

func TestHost_BookErrors(t *testing.T) {
	h := New(staticSource{}, failingBook{})
	_, err := h.FetchTimers(context.Background())
	assert.ErrorContains(t, err, "disk full")
	_, err = h.CreateTimer(context.Background(), request("espn", tipoff))
	assert.ErrorContains(t, err, "disk full")
}

const guide = `<?xml version="1.0" encoding="UTF-8"?>
<tv>
  <channel id="espn"><display-name>ESPN</display-name></channel>
  <programme start="20250301190000 +0000" stop="20250301213000 +0000" channel="espn">
    <title>Lakers vs Celtics</title>
    <category>Basketball</category>
    <live/>
  </programme>
</tv>`

func TestHost_ScanAgainstXMLTV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.xml")
	require.NoError(t, os.WriteFile(path, []byte(guide), 0o600))

	st := store.NewMemoryStore()
	h := New(epg.NewXMLTVSource(path, "", nil), st)

	cfg := config.Defaults()
	cfg.Subscriptions = []subscription.Definition{{ID: "lakers", Name: "Lakers", Kind: subscription.KindTeam, Match: "Lakers"}}
	catalog := dvr.NewCatalog(nil)
	require.NoError(t, catalog.Apply(cfg))
	now := func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	engine := dvr.NewEngine(catalog, h, st, dvr.WithClock(now))

	report, err := engine.Run(context.Background(), dvr.RunRequest{Trigger: dvr.TriggerManual})
	require.NoError(t, err)
	assert.Equal(t, dvr.StatusSuccess, report.Status)
	assert.Equal(t, 1, report.Summary.TimersCreated)

	timers, err := st.ListTimers(context.Background())
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "espn", timers[0].ChannelID)
	assert.Contains(t, timers[0].Overview, dvr.OwnershipMarker)

	report, err = engine.Run(context.Background(), dvr.RunRequest{Trigger: dvr.TriggerManual})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.SkippedExisting)
	assert.Equal(t, 0, report.Summary.TimersCreated)
}
