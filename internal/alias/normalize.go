// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package alias

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	unorm "golang.org/x/text/unicode/norm"
)

var (
	space      = regexp.MustCompile(`\s+`)
	punctation = regexp.MustCompile(`[.,'’"()\[\]\-_/&:]+`)
	orgPrefix  = regexp.MustCompile(`^(fc|cf|sc|ac|afc|sv|ssc|as|cd|rc|club|fk|sk|bk|ud|ca|cs|tsv|vfb|vfl|1)\s+`)
	orgSuffix  = regexp.MustCompile(`\s+(fc|cf|sc|ac|afc|sv|ssc|as|cd|rc|club|fk|sk|bk|ud|ca|cs)$`)
)

// Key folds case, diacritics, punctuation and whitespace.
func Key(s string) string {
	t := transform.Chain(unorm.NFD, runes.Remove(runes.In(unicode.Mn)), unorm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = unorm.NFC.String(s)
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "ß", "ss")
	folded = punctation.ReplaceAllString(folded, " ")
	folded = space.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// Strip removes organizational prefixes and suffixes from a key until none
// remain. A name consisting only of such tokens is returned unchanged.
func Strip(key string) string {
	s := key
	for {
		before := s
		if next := orgPrefix.ReplaceAllString(s, ""); next != "" {
			s = next
		}
		if next := orgSuffix.ReplaceAllString(s, ""); next != "" {
			s = next
		}
		if s == before {
			return strings.TrimSpace(s)
		}
	}
}

// HasPhrase reports whether phrase occurs in an already folded text on word
// boundaries. Both sides are compared in Key form.
func HasPhrase(foldedText, phrase string) bool {
	p := Key(phrase)
	if p == "" || foldedText == "" {
		return false
	}
	return strings.Contains(" "+foldedText+" ", " "+p+" ")
}

// PhraseIndex returns the byte offset of phrase in folded text, or -1.
func PhraseIndex(foldedText, phrase string) int {
	p := Key(phrase)
	if p == "" || foldedText == "" {
		return -1
	}
	i := strings.Index(" "+foldedText+" ", " "+p+" ")
	return i
}
