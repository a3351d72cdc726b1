// SPDX-License-Identifier: MIT
package epg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sportsdvr/internal/model"
)

const sampleGuide = `<?xml version="1.0" encoding="UTF-8"?>
<tv generator-info-name="tv_grab">
  <channel id="sky1.de">
    <display-name>Sky Sport 1 HD</display-name>
  </channel>
  <channel id="espn.us">
    <display-name>ESPN</display-name>
  </channel>
  <programme start="20250301190000 +0100" stop="20250301210000 +0100" channel="sky1.de">
    <title lang="en">Bayern Munich vs Borussia Dortmund</title>
    <title lang="de">Bayern München - Borussia Dortmund</title>
    <sub-title>Bundesliga</sub-title>
    <desc lang="de">Der Klassiker live.</desc>
    <category lang="en">Sports</category>
    <category lang="en">Soccer</category>
    <live/>
  </programme>
  <programme start="20250301230000 +0000" stop="20250302010000 +0000" channel="espn.us">
    <title>NBA: Lakers at Celtics</title>
    <previously-shown start="20250228"/>
  </programme>
  <programme start="20250301170000 +0000" stop="20250301180000 +0000" channel="espn.us">
    <title>SportsCenter</title>
  </programme>
  <programme start="garbage" stop="20250301180000 +0000" channel="espn.us">
    <title>Broken</title>
  </programme>
  <programme start="20250301200000 +0000" stop="20250301210000 +0000" channel="espn.us">
    <title></title>
  </programme>
</tv>`

var (
	guideFrom = time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC)
	guideTo   = guideFrom.Add(24 * time.Hour)
)

func writeGuide(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestPrograms(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleGuide))
	require.NoError(t, err)

	programs, skipped := Programs(doc, "de", guideFrom, guideTo)
	assert.Equal(t, 2, skipped)

	kickoff := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	tipoff := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	want := []model.Program{
		{
			ID:          "sky1.de|1740852000",
			ChannelID:   "sky1.de",
			ChannelName: "Sky Sport 1 HD",
			Title:       "Bayern München - Borussia Dortmund",
			Subtitle:    "Bundesliga",
			Description: "Der Klassiker live.",
			Start:       kickoff,
			End:         kickoff.Add(2 * time.Hour),
			IsLive:      true,
			Categories:  []string{"Sports", "Soccer"},
		},
		{
			ID:          "espn.us|1740870000",
			ChannelID:   "espn.us",
			ChannelName: "ESPN",
			Title:       "NBA: Lakers at Celtics",
			Start:       tipoff,
			End:         tipoff.Add(2 * time.Hour),
			IsRepeat:    true,
		},
	}
	if diff := cmp.Diff(want, programs); diff != "" {
		t.Errorf("programs mismatch (-want +got):\n%s", diff)
	}
}

func TestPrograms_LanguageFallback(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleGuide))
	require.NoError(t, err)

	programs, _ := Programs(doc, "fr", guideFrom, guideTo)
	require.NotEmpty(t, programs)
	assert.Equal(t, "Bayern Munich vs Borussia Dortmund", programs[0].Title)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("20250301190000 +0100")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)))

	got, err = ParseTime("20250301190000")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)))

	_, err = ParseTime("2025-03-01")
	assert.Error(t, err)

	assert.Equal(t, "20250301190000 +0000", FormatTime(time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)))
}

func TestDecode_Hardening(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"external entity", `<?xml version="1.0"?>
<!DOCTYPE foo [<!ENTITY xxe SYSTEM "file:///etc/passwd">]>
<tv><channel id="x"><display-name>&xxe;</display-name></channel></tv>`},
		{"entity expansion", `<?xml version="1.0"?>
<!DOCTYPE lolz [<!ENTITY lol "lol"><!ENTITY lol1 "&lol;&lol;&lol;">]>
<tv><channel id="x"><display-name>&lol1;</display-name></channel></tv>`},
		{"malformed", `<tv><channel id="x"><display-name>Unclosed</channel></tv>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "decode xmltv")
		})
	}
}

func TestDecode_Latin1(t *testing.T) {
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<tv><channel id=\"orf\"><display-name>ORF Sport \xdcbertragung</display-name></channel></tv>"
	doc, err := Decode(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, doc.Channels, 1)
	assert.Equal(t, "ORF Sport Übertragung", doc.Channels[0].DisplayName[0])
}

func TestNameKey(t *testing.T) {
	tests := map[string]string{
		"Sky Sport 1 HD":     "sky sport 1",
		"  ORF   Sport  AT ": "orf sport",
		"Eurosport UHD HD":   "eurosport",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NameKey(in), in)
	}
}

func TestXMLTVSource_FetchPrograms(t *testing.T) {
	path := writeGuide(t, sampleGuide)

	all, err := NewXMLTVSource(path, "", nil).FetchPrograms(context.Background(), guideFrom, guideTo)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := NewXMLTVSource(path, "", []string{"sky sport 1"}).FetchPrograms(context.Background(), guideFrom, guideTo)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "sky1.de", filtered[0].ChannelID)

	byID, err := NewXMLTVSource(path, "", []string{"espn.us"}).FetchPrograms(context.Background(), guideFrom, guideTo)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "espn.us", byID[0].ChannelID)
}

func TestXMLTVSource_Errors(t *testing.T) {
	_, err := NewXMLTVSource(filepath.Join(t.TempDir(), "missing.xml"), "", nil).
		FetchPrograms(context.Background(), guideFrom, guideTo)
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewXMLTVSource(writeGuide(t, sampleGuide), "", nil).FetchPrograms(ctx, guideFrom, guideTo)
	assert.ErrorIs(t, err, context.Canceled)
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte(sampleGuide))
	f.Add([]byte(`<?xml version="1.0" encoding="UTF-8"?><tv></tv>`))
	f.Add([]byte(`<tv><programme start="x" stop="y" channel=""><title/></programme></tv>`))
	f.Add([]byte(``))
	f.Add([]byte(`<invalid xml`))

	f.Fuzz(func(t *testing.T, data []byte) {
		doc, err := Decode(strings.NewReader(string(data)))
		if err != nil {
			return
		}
		programs, _ := Programs(doc, "", time.Unix(0, 0), time.Unix(1<<40, 0))
		for _, p := range programs {
			if p.End.Before(p.Start) {
				t.Fatalf("program %q ends before it starts", p.ID)
			}
		}
		_ = ChannelNames(doc)
	})
}
