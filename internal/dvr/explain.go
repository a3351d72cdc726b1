package dvr

import (
	"strings"
	"time"

	"github.com/ManuGH/sportsdvr/internal/classify"
	"github.com/ManuGH/sportsdvr/internal/model"
	"github.com/ManuGH/sportsdvr/internal/subscription"
)

// ReasonNotSports is reported for programs scoring below the likely-game
// cutoff, which never reach the matcher.
const ReasonNotSports subscription.Reason = "not_sports"

// Explanation is the classification and match outcome of one program.
type Explanation struct {
	Program        model.Program         `json:"program"`
	Classification classify.Result       `json:"classification"`
	LikelyGame     bool                  `json:"likely_game"`
	PossibleGame   bool                  `json:"possible_game"`
	Decision       subscription.Decision `json:"decision"`
}

// Explain runs one program through the classifier and the matcher the way
// a scan at now would.
func (s *Snapshot) Explain(p model.Program, now time.Time) Explanation {
	c := s.classify(classify.New(s.Tables, classify.WithReferenceTime(now)), p)
	out := Explanation{
		Program:        p,
		Classification: c,
		LikelyGame:     c.IsLikelyGame(),
		PossibleGame:   c.IsPossibleGame(),
		Decision:       subscription.Decision{Reason: ReasonNotSports},
	}
	if isCandidate(c) {
		_, out.Decision = s.Matcher.Match(p, c, s.Subscriptions)
	}
	return out
}

func (s *Snapshot) classify(classifier *classify.Classifier, p model.Program) classify.Result {
	return classifier.Score(p.Title, p.ChannelName, secondaryText(p), s.hasSportsCategory(p))
}

// secondaryText is the subtitle and description, where many feeds put the
// matchup or the rebroadcast note.
func secondaryText(p model.Program) string {
	return strings.TrimSpace(p.Subtitle + " " + p.Description)
}

// isCandidate gates the matcher on the likely-game score. Pre/post shows
// pass on score alone so the matcher reports their veto.
func isCandidate(c classify.Result) bool {
	return c.Score >= classify.LikelyThreshold
}

func (s *Snapshot) hasSportsCategory(p model.Program) bool {
	for _, c := range p.Categories {
		if s.Tables.IsSportsCategory(c) {
			return true
		}
	}
	return false
}
