// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package classify scores EPG text for "is this a live sports game".
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/sportsdvr/internal/alias"
	"github.com/ManuGH/sportsdvr/internal/sports"
)

// Classification cutoffs.
const (
	LikelyThreshold   = 50
	PossibleThreshold = 20
)

// Signal weights.
const (
	WeightTitleMatchup       = 40
	WeightDescriptionMatchup = 30
	WeightRosterPair         = 30
	WeightSportsChannel      = 20
	WeightCategoryHint       = 15
	WeightLeagueKeyword      = 15
	WeightFightCard          = 35

	PenaltyReplay            = -50
	PenaltyLeadingYear       = -40
	PenaltyArchivalYear      = -30
	PenaltyHighlights        = -40
	PenaltyPastSeason        = -35
	PenaltyPlaceholder       = -30
	PenaltyNonSports         = -30
	PenaltyPrePost           = -40
	PenaltySingleParticipant = -15
	PenaltyFightCardNotLive  = -20
)

// Result is the outcome of scoring one program.
type Result struct {
	Score           int      `json:"score"`
	HasMatchup      bool     `json:"has_matchup"`
	League          string   `json:"league,omitempty"`
	Participant1    string   `json:"participant1,omitempty"`
	Participant2    string   `json:"participant2,omitempty"`
	IsReplay        bool     `json:"is_replay"`
	IsPrePostShow   bool     `json:"is_pre_post_show"`
	OnSportsChannel bool     `json:"on_sports_channel"`
	Signals         []string `json:"signals,omitempty"`
}

// IsLikelyGame reports a high-confidence live game. Pre/post shows never are.
func (r Result) IsLikelyGame() bool {
	return !r.IsPrePostShow && r.Score >= LikelyThreshold
}

// IsPossibleGame reports the lower cutoff.
func (r Result) IsPossibleGame() bool {
	return r.Score >= PossibleThreshold
}

// Participants returns the extracted participant names that are non-empty.
func (r Result) Participants() []string {
	var out []string
	for _, p := range []string{r.Participant1, r.Participant2} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *Result) add(name string, weight int) {
	r.Score += weight
	r.Signals = append(r.Signals, fmt.Sprintf("%s%+d", name, weight))
}

var (
	replayTitle    = regexp.MustCompile(`(?i)\b(replay|re-air|reair|encore|classics?|rebroadcast|re-?run|throwback|rewind|from the vault)\b`)
	replayDesc     = regexp.MustCompile(`(?i)\b(replay|re-air|encore presentation|rebroadcast|re-?run|originally aired|first aired)\b`)
	highlights     = regexp.MustCompile(`(?i)\b(highlights?|recap|best of|top 10|top ten|mixtape)\b`)
	placeholder    = regexp.MustCompile(`(?i)\b(tba|tbd|to be announced|to be determined|paid programming|infomercial|off air|sign off)\b`)
	nonSports      = regexp.MustCompile(`(?i)\b(news|weather|documentary|docuseries|talk show|cooking|movie|film|soap opera|sitcom)\b`)
	prePostTitle   = regexp.MustCompile(`(?i)\b(pre-?game|post-?game|pre-?match|post-?match|pre-?race|post-?race|countdown|kickoff show|tip-?off show|halftime show|studio|warm-?up|preview|analysis|gameday|game day live|inside the nba|sportscenter|match of the day|press conference)\b`)
	prePostDesc    = regexp.MustCompile(`(?i)\b(pre-?game|post-?game|pre-?match|post-?match) (show|coverage|analysis)\b`)
	fightCard      = regexp.MustCompile(`(?i)\b(ufc(\s+fight\s+night)?|bellator|pfl|one fight night)\s+\d{1,4}\b`)
	fightNotLive   = regexp.MustCompile(`(?i)\b(interview|countdown|press conference|flashback|full fight|embedded|weigh-?ins?)\b`)
	parenYear      = regexp.MustCompile(`\(((?:19|20)\d{2})\)`)
	seasonRange    = regexp.MustCompile(`\b((?:19|20)\d{2})\s*[-/–]\s*((?:19|20)\d{2}|\d{2})\b`)
	leadingYear    = regexp.MustCompile(`^((?:19|20)\d{2})(?:\s|$)`)
	segmentSplit   = regexp.MustCompile(`\s*(?::|\s-\s|\s–\s|\|)\s*`)
	matchupSep     = regexp.MustCompile(`(?i)\s+(?:vs\.?|versus|v\.?|@)\s+`)
	matchupAt      = regexp.MustCompile(`\s+at\s+(\p{Lu})`)
	participantCut = regexp.MustCompile(`\s*[\(\[|,].*$`)
)

type teamNames struct {
	name  string
	long  []string
	short *regexp.Regexp
}

type roster struct {
	league string
	teams  []teamNames
}

// Classifier scores program text. It is immutable after New and safe for
// concurrent use.
type Classifier struct {
	tables  *sports.Tables
	refYear int
	rosters []roster
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithReferenceTime fixes the reference year used for past-season detection.
func WithReferenceTime(t time.Time) Option {
	return func(c *Classifier) {
		c.refYear = t.Year()
	}
}

// New builds a Classifier over the given tables. A nil tables value uses sports.Default.
func New(tables *sports.Tables, opts ...Option) *Classifier {
	if tables == nil {
		tables = sports.Default()
	}
	c := &Classifier{tables: tables, refYear: time.Now().Year()}
	for _, opt := range opts {
		opt(c)
	}
	for _, league := range tables.RosterLeagues() {
		r := roster{league: league}
		for _, tm := range tables.Roster(league) {
			tn := teamNames{name: tm.Name}
			var short []string
			for _, n := range append([]string{tm.Name}, tm.Aliases...) {
				if len([]rune(n)) <= 3 {
					short = append(short, regexp.QuoteMeta(n))
					continue
				}
				tn.long = append(tn.long, alias.Key(n))
			}
			if len(short) > 0 {
				tn.short = regexp.MustCompile(`\b(?:` + strings.Join(short, "|") + `)\b`)
			}
			r.teams = append(r.teams, tn)
		}
		c.rosters = append(c.rosters, r)
	}
	return c
}

// Tables returns the lookup tables the classifier was built with.
func (c *Classifier) Tables() *sports.Tables {
	return c.tables
}

// ReferenceYear returns the year current seasons are judged against.
func (c *Classifier) ReferenceYear() int {
	return c.refYear
}

// Score classifies one program. description may carry the subtitle as well.
func (c *Classifier) Score(title, channel, description string, categoryHint bool) Result {
	var r Result
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	combined := strings.TrimSpace(title + " " + description)
	folded := alias.Key(combined)

	if p1, p2, ok := ExtractMatchup(title); ok {
		r.HasMatchup = true
		r.Participant1, r.Participant2 = p1, p2
		r.add("title_matchup", WeightTitleMatchup)
	} else if p1, p2, ok := ExtractMatchup(description); ok {
		r.HasMatchup = true
		r.Participant1, r.Participant2 = p1, p2
		r.add("description_matchup", WeightDescriptionMatchup)
	}

	if fightCard.MatchString(title) {
		if fightNotLive.MatchString(combined) {
			r.add("fight_card_not_live", PenaltyFightCardNotLive)
		} else {
			r.add("fight_card", WeightFightCard)
		}
	}

	if code := c.detectLeague(folded); code != "" {
		r.League = code
		r.add("league_keyword", WeightLeagueKeyword)
	}

	c.scoreRoster(&r, combined, folded)
	if r.HasMatchup {
		r.Participant1 = c.refine(r.Participant1)
		r.Participant2 = c.refine(r.Participant2)
	}

	if c.tables.IsSportsChannel(channel) {
		r.OnSportsChannel = true
		r.add("sports_channel", WeightSportsChannel)
	}
	if categoryHint {
		r.add("category_hint", WeightCategoryHint)
	}

	if replayTitle.MatchString(title) || replayDesc.MatchString(description) {
		r.IsReplay = true
		r.add("replay", PenaltyReplay)
	}
	if c.hasLeadingYear(title) {
		r.add("leading_year", PenaltyLeadingYear)
	}
	if c.hasArchivalYear(title) {
		r.add("archival_year", PenaltyArchivalYear)
	}
	if highlights.MatchString(title) {
		r.add("highlights", PenaltyHighlights)
	}
	if c.hasPastSeason(combined) {
		r.add("past_season", PenaltyPastSeason)
	}
	if placeholder.MatchString(title) {
		r.add("placeholder", PenaltyPlaceholder)
	}
	if nonSports.MatchString(title) {
		r.add("non_sports", PenaltyNonSports)
	}
	if prePostTitle.MatchString(title) || prePostDesc.MatchString(description) {
		r.IsPrePostShow = true
		r.add("pre_post_show", PenaltyPrePost)
	}
	return r
}

func (c *Classifier) detectLeague(folded string) string {
	for _, l := range c.tables.Leagues {
		for _, kw := range l.Keywords {
			if alias.HasPhrase(folded, kw) {
				return l.Code
			}
		}
	}
	return ""
}

type hit struct {
	name string
	pos  int
}

func (t teamNames) find(raw, folded string) (int, bool) {
	best := -1
	for _, n := range t.long {
		if i := alias.PhraseIndex(folded, n); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best >= 0 {
		return best, true
	}
	if t.short != nil {
		if loc := t.short.FindStringIndex(raw); loc != nil {
			// raw offsets only order short hits among themselves
			return len(folded) + loc[0], true
		}
	}
	return -1, false
}

func (c *Classifier) scoreRoster(r *Result, raw, folded string) {
	distinct := map[string]struct{}{}
	var pair []hit
	pairLeague := ""
	for _, ros := range c.rosters {
		var hits []hit
		for _, tm := range ros.teams {
			if pos, ok := tm.find(raw, folded); ok {
				hits = append(hits, hit{name: tm.name, pos: pos})
				distinct[tm.name] = struct{}{}
			}
		}
		if len(hits) >= 2 && pair == nil {
			sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
			pair = hits[:2]
			pairLeague = ros.league
		}
	}

	if pair != nil {
		r.add("roster_pair", WeightRosterPair)
		if r.League == "" {
			r.League = pairLeague
		}
		if r.Participant1 == "" && r.Participant2 == "" {
			r.Participant1, r.Participant2 = pair[0].name, pair[1].name
		}
		return
	}
	if len(distinct) == 1 && !r.HasMatchup {
		r.add("single_participant", PenaltySingleParticipant)
	}
}

// refine replaces an extracted participant with the roster team it names, so
// "NBA Basketball Lakers" becomes "Los Angeles Lakers".
func (c *Classifier) refine(p string) string {
	folded := alias.Key(p)
	for _, ros := range c.rosters {
		for _, tm := range ros.teams {
			if _, ok := tm.find(p, folded); ok {
				return tm.name
			}
		}
	}
	return p
}

func (c *Classifier) hasLeadingYear(title string) bool {
	for _, seg := range segmentSplit.Split(title, -1) {
		m := leadingYear.FindStringSubmatch(strings.TrimSpace(seg))
		if m == nil {
			continue
		}
		if y := year(m[1]); y < c.refYear {
			return true
		}
	}
	return false
}

func (c *Classifier) hasArchivalYear(title string) bool {
	for _, m := range parenYear.FindAllStringSubmatch(title, -1) {
		if year(m[1]) < c.refYear {
			return true
		}
	}
	return false
}

func (c *Classifier) hasPastSeason(text string) bool {
	for _, m := range seasonRange.FindAllStringSubmatch(text, -1) {
		start := year(m[1])
		end := year(m[2])
		if len(m[2]) == 2 {
			end += start / 100 * 100
			if end < start {
				end += 100
			}
		}
		if d := end - start; d < 0 || d > 1 {
			continue
		}
		if end < c.refYear {
			return true
		}
	}
	return false
}

// ExtractMatchup finds "A vs B", "A v B", "A @ B" or "A at B" within one
// segment of text and returns both sides.
func ExtractMatchup(text string) (string, string, bool) {
	for _, seg := range segmentSplit.Split(text, -1) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		var left, right string
		if loc := matchupSep.FindStringIndex(seg); loc != nil {
			left, right = seg[:loc[0]], seg[loc[1]:]
		} else if loc := matchupAt.FindStringSubmatchIndex(seg); loc != nil {
			left, right = seg[:loc[0]], seg[loc[2]:]
		} else {
			continue
		}
		left = strings.TrimSpace(participantCut.ReplaceAllString(left, ""))
		right = strings.TrimSpace(participantCut.ReplaceAllString(right, ""))
		if left != "" && right != "" {
			return left, right, true
		}
	}
	return "", "", false
}

// year parses a regexp-captured digit run.
func year(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
