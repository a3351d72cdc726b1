// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/model"
)

type classifyFlags struct {
	title       string
	subtitle    string
	description string
	channel     string
	categories  []string
	live        bool
	repeat      bool
	start       string
	duration    time.Duration
	jsonOut     bool
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var f classifyFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Explain how one guide entry would be classified and matched",
		Example: `  sportsdvr classify --title "Lakers vs Celtics" --channel ESPN --live
  sportsdvr classify --title "Bundesliga: Bayern - Dortmund" --category Soccer --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			p, err := f.program(now)
			if err != nil {
				return err
			}
			catalog := dvr.NewCatalog(nil)
			if err := catalog.Apply(ctx.cfg); err != nil {
				return err
			}
			ex := catalog.Snapshot().Explain(p, now)
			if f.jsonOut {
				return writeJSON(cmd, ex)
			}
			printExplanation(cmd, ex)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "Program title (required)")
	fl.StringVar(&f.subtitle, "subtitle", "", "Program subtitle")
	fl.StringVar(&f.description, "description", "", "Program description")
	fl.StringVar(&f.channel, "channel", "", "Channel name")
	fl.StringSliceVar(&f.categories, "category", nil, "Guide category, repeatable")
	fl.BoolVar(&f.live, "live", false, "Flag the entry as live")
	fl.BoolVar(&f.repeat, "repeat", false, "Flag the entry as a repeat")
	fl.StringVar(&f.start, "start", "", "Start time in RFC 3339, default now")
	fl.DurationVar(&f.duration, "duration", 2*time.Hour, "Program length")
	fl.BoolVar(&f.jsonOut, "json", false, "Print the explanation as JSON")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (f classifyFlags) program(now time.Time) (model.Program, error) {
	if strings.TrimSpace(f.title) == "" {
		return model.Program{}, errors.New("--title must not be empty")
	}
	if f.duration <= 0 {
		return model.Program{}, errors.New("--duration must be positive")
	}
	start := now
	if f.start != "" {
		t, err := time.Parse(time.RFC3339, f.start)
		if err != nil {
			return model.Program{}, fmt.Errorf("--start: %w", err)
		}
		start = t
	}
	start = start.UTC()
	return model.Program{
		ID:          "cli",
		ChannelID:   f.channel,
		ChannelName: f.channel,
		Title:       f.title,
		Subtitle:    f.subtitle,
		Description: f.description,
		Start:       start,
		End:         start.Add(f.duration),
		IsLive:      f.live,
		IsRepeat:    f.repeat,
		Categories:  f.categories,
	}, nil
}

func printExplanation(cmd *cobra.Command, ex dvr.Explanation) {
	c := ex.Classification
	rows := [][]string{
		{"score", strconv.Itoa(c.Score)},
		{"likely game", strconv.FormatBool(ex.LikelyGame)},
		{"possible game", strconv.FormatBool(ex.PossibleGame)},
		{"matchup", strconv.FormatBool(c.HasMatchup)},
		{"league", c.League},
		{"participants", strings.Trim(c.Participant1+" / "+c.Participant2, " /")},
		{"replay", strconv.FormatBool(c.IsReplay)},
		{"pre/post show", strconv.FormatBool(c.IsPrePostShow)},
		{"sports channel", strconv.FormatBool(c.OnSportsChannel)},
		{"signals", strings.Join(c.Signals, ", ")},
		{"decision", string(ex.Decision.Reason)},
		{"subscription", ex.Decision.SubscriptionID},
		{"detail", ex.Decision.Detail},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
}
