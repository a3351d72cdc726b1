package epg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/model"
)

// XMLTVSource serves guide programs from an XMLTV file. The file is re-read
// on every fetch so an external grabber can replace it between scans.
type XMLTVSource struct {
	path     string
	lang     string
	channels []string
	logger   zerolog.Logger
}

// NewXMLTVSource reads programs from path. lang selects the preferred
// language of titles and descriptions; empty takes the first. When channels
// is non-empty only those channels, given by id or display name, are served.
func NewXMLTVSource(path, lang string, channels []string) *XMLTVSource {
	return &XMLTVSource{
		path:     filepath.Clean(path),
		lang:     lang,
		channels: channels,
		logger:   log.WithComponent("epg.xmltv"),
	}
}

// FetchPrograms returns the programmes starting in [from, to), ordered by
// start time and channel.
func (s *XMLTVSource) FetchPrograms(ctx context.Context, from, to time.Time) ([]model.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open xmltv: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	programs, skipped := Programs(doc, s.lang, from, to)
	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Str(log.FieldPath, s.path).Msg("invalid programmes ignored")
	}
	if len(s.channels) == 0 {
		return programs, nil
	}

	allowed := s.allowed(doc)
	kept := programs[:0]
	for _, p := range programs {
		if _, ok := allowed[p.ChannelID]; ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

func (s *XMLTVSource) allowed(doc *TV) map[string]struct{} {
	byName := ChannelNames(doc)
	out := make(map[string]struct{}, len(s.channels))
	for _, c := range s.channels {
		if id, ok := byName[NameKey(c)]; ok {
			out[id] = struct{}{}
			continue
		}
		out[c] = struct{}{}
	}
	return out
}

// Programs converts the programmes of doc starting in [from, to). It also
// returns how many programmes were dropped as invalid.
func Programs(doc *TV, lang string, from, to time.Time) ([]model.Program, int) {
	names := make(map[string]string, len(doc.Channels))
	for _, ch := range doc.Channels {
		if len(ch.DisplayName) > 0 {
			names[ch.ID] = ch.DisplayName[0]
		}
	}

	var (
		out     []model.Program
		skipped int
	)
	for _, p := range doc.Programs {
		title := pick(p.Titles, lang)
		start, err1 := ParseTime(p.Start)
		stop, err2 := ParseTime(p.Stop)
		if p.Channel == "" || title == "" || err1 != nil || err2 != nil || stop.Before(start) {
			skipped++
			continue
		}
		start, stop = start.UTC(), stop.UTC()
		if start.Before(from) || !start.Before(to) {
			continue
		}

		prog := model.Program{
			ID:          p.Channel + "|" + strconv.FormatInt(start.Unix(), 10),
			ChannelID:   p.Channel,
			ChannelName: names[p.Channel],
			Title:       title,
			Subtitle:    pick(p.SubTitles, lang),
			Description: pick(p.Descs, lang),
			Start:       start,
			End:         stop,
			IsLive:      p.Live != nil,
			IsRepeat:    p.Previously != nil,
		}
		for _, c := range p.Categories {
			if c.Value != "" {
				prog.Categories = append(prog.Categories, c.Value)
			}
		}
		out = append(out, prog)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ChannelID < out[j].ChannelID
	})
	return out, skipped
}

// ChannelNames maps NameKey(display name) to channel id.
func ChannelNames(doc *TV) map[string]string {
	out := make(map[string]string, len(doc.Channels))
	for _, ch := range doc.Channels {
		if ch.ID == "" {
			continue
		}
		for _, name := range ch.DisplayName {
			if key := NameKey(name); key != "" {
				out[key] = ch.ID
			}
		}
	}
	return out
}
