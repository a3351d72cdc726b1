// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package subscription

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ManuGH/sportsdvr/internal/alias"
)

// Expr is a parsed match expression: either a literal or a /regex/ with an
// optional trailing i flag.
type Expr struct {
	Raw             string
	Literal         string
	Regex           bool
	CaseInsensitive bool

	re  *regexp.Regexp
	err error
}

// ParseExpr parses s once. An invalid regex yields an expression that never
// matches; Err reports the compile error.
func ParseExpr(s string) Expr {
	e := Expr{Raw: s}
	trimmed := strings.TrimSpace(s)
	if pattern, flags, ok := splitRegex(trimmed); ok {
		e.Regex = true
		e.CaseInsensitive = flags == "i"
		src := pattern
		if e.CaseInsensitive {
			src = "(?i)" + pattern
		}
		re, err := regexp.Compile(src)
		if err != nil {
			e.err = fmt.Errorf("compile %q: %w", s, err)
			return e
		}
		e.re = re
		return e
	}
	e.Literal = trimmed
	return e
}

func splitRegex(s string) (pattern, flags string, ok bool) {
	if len(s) < 2 || s[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndexByte(s, '/')
	if end <= 0 {
		return "", "", false
	}
	flags = s[end+1:]
	if flags != "" && flags != "i" {
		return "", "", false
	}
	return s[1:end], flags, true
}

// Err returns the regex compile error, if any.
func (e Expr) Err() error {
	return e.err
}

// Empty reports an expression with nothing to match.
func (e Expr) Empty() bool {
	return !e.Regex && e.Literal == ""
}

// MatchRegex evaluates a regex expression against raw text.
func (e Expr) MatchRegex(raw string) bool {
	if e.re == nil {
		return false
	}
	return e.re.MatchString(raw)
}

// Contains evaluates the expression as substring containment: regexes run on
// the raw text, literals compare folded forms.
func (e Expr) Contains(raw, folded string) bool {
	if e.Regex {
		return e.MatchRegex(raw)
	}
	k := alias.Key(e.Literal)
	if k == "" {
		return false
	}
	return strings.Contains(folded, k)
}

// String returns the source text.
func (e Expr) String() string {
	return e.Raw
}
