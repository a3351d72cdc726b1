// SPDX-License-Identifier: MIT

// Package epg reads XMLTV guide files.
package epg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"
	unorm "golang.org/x/text/unicode/norm"
)

// MaxXMLSize bounds how much of an XMLTV document is read.
const MaxXMLSize = 50 * 1024 * 1024

// TimeLayout is the XMLTV timestamp format.
const TimeLayout = "20060102150405 -0700"

type TV struct {
	XMLName   xml.Name    `xml:"tv"`
	Generator string      `xml:"generator-info-name,attr,omitempty"`
	Channels  []Channel   `xml:"channel"`
	Programs  []Programme `xml:"programme"`
}

type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
}

type Programme struct {
	Start      string           `xml:"start,attr"`
	Stop       string           `xml:"stop,attr"`
	Channel    string           `xml:"channel,attr"`
	Titles     []Text           `xml:"title"`
	SubTitles  []Text           `xml:"sub-title"`
	Descs      []Text           `xml:"desc"`
	Categories []Text           `xml:"category"`
	Live       *struct{}        `xml:"live"`
	Previously *PreviouslyShown `xml:"previously-shown"`
}

// Text is a localized character data element.
type Text struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// PreviouslyShown marks a repeat.
type PreviouslyShown struct {
	Start string `xml:"start,attr,omitempty"`
}

// Decode parses an XMLTV document. Input beyond MaxXMLSize is ignored and
// entity expansion is disabled.
func Decode(r io.Reader) (*TV, error) {
	dec := xml.NewDecoder(io.LimitReader(r, MaxXMLSize))
	dec.Strict = true
	dec.Entity = make(map[string]string)
	dec.CharsetReader = charsetReader

	var doc TV
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}
	return &doc, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// ParseTime parses an XMLTV timestamp. A missing offset means UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 14 {
		return time.Parse(TimeLayout, s)
	}
	return time.Parse("20060102150405", s)
}

// FormatTime renders t in the XMLTV layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// pick returns the first non-empty value, preferring lang when given.
func pick(texts []Text, lang string) string {
	if lang != "" {
		for _, t := range texts {
			if strings.EqualFold(t.Lang, lang) && strings.TrimSpace(t.Value) != "" {
				return strings.TrimSpace(t.Value)
			}
		}
	}
	for _, t := range texts {
		if v := strings.TrimSpace(t.Value); v != "" {
			return v
		}
	}
	return ""
}

var (
	suffix = regexp.MustCompile(`\s+(hd|uhd|4k|austria|österreich|oesterreich|at|de|ch)$`)
	space  = regexp.MustCompile(`\s+`)
)

// NameKey folds a channel display name for lookups, so "Sky Sport 1 HD" and
// "sky sport 1" share a key.
func NameKey(s string) string {
	s = unorm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = unorm.NFC.String(s)

	for {
		before := s
		s = suffix.ReplaceAllString(s, "")
		if s == before {
			break
		}
	}

	s = space.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
