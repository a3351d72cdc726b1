// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package model holds the guide and timer records exchanged with a DVR host.
package model

import "time"

// Program is one EPG entry as read from the host guide. Times are UTC.
type Program struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	IsLive      bool      `json:"is_live,omitempty"`
	IsRepeat    bool      `json:"is_repeat,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
}

// Duration returns the nominal program length.
func (p Program) Duration() time.Duration {
	if p.End.Before(p.Start) {
		return 0
	}
	return p.End.Sub(p.Start)
}

// HasCategories reports whether the broadcaster supplied any category tag.
func (p Program) HasCategories() bool {
	for _, c := range p.Categories {
		if c != "" {
			return true
		}
	}
	return false
}

// ExistingTimer is a recording timer already present on the host.
type ExistingTimer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ChannelID string    `json:"channel_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Overview  string    `json:"overview,omitempty"`
}

// Slot returns the timer window as a fixed time slot.
func (t ExistingTimer) Slot() TimeSlot {
	return TimeSlot{Start: t.Start, End: t.End, Fixed: true}
}

// TimeSlot is a half-open [Start, End) interval.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Fixed bool      `json:"fixed,omitempty"`
}

// Overlaps reports whether two half-open intervals share any instant.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Contains reports whether t lies inside the slot.
func (s TimeSlot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}
