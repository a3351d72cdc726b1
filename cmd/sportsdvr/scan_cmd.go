// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/sportsdvr/internal/daemon"
	"github.com/ManuGH/sportsdvr/internal/dvr"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		mode     string
		jsonOut  bool
		showAll  bool
		fromFile bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan now and print its report",
		Long: `Runs the full pipeline once against the configured host: fetch the
guide and timers, classify, match, deduplicate, schedule and commit.
With --latest the last persisted report is printed instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromFile {
				report, err := dvr.LoadReport(filepath.Join(ctx.cfg.ReportsDir(), dvr.LatestReportFile))
				if err != nil {
					return fmt.Errorf("load latest report: %w", err)
				}
				return printReport(cmd, report, jsonOut, showAll)
			}

			sigCtx, stop := daemon.WaitForShutdown()
			defer stop()
			report, err := runScan(sigCtx, ctx, mode)
			if report != nil {
				if perr := printReport(cmd, report, jsonOut, showAll); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Scan mode override: incremental or full")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&showAll, "all", false, "List skipped decisions too")
	cmd.Flags().BoolVar(&fromFile, "latest", false, "Print the last persisted report without scanning")
	return cmd
}

func runScan(ctx context.Context, cc *commandContext, mode string) (*dvr.RunReport, error) {
	rt, err := daemon.Build(ctx, cc.cfg)
	if err != nil {
		return nil, err
	}
	report, runErr := rt.Engine.Run(ctx, dvr.RunRequest{Trigger: dvr.TriggerManual, Mode: mode})
	return report, errors.Join(runErr, rt.Close(context.WithoutCancel(ctx)))
}

func printReport(cmd *cobra.Command, r *dvr.RunReport, jsonOut, showAll bool) error {
	if jsonOut {
		return writeJSON(cmd, r)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s, %s) %s in %s\n", r.RunID, r.Trigger, r.Mode, r.Status,
		(time.Duration(r.DurationMs) * time.Millisecond).String())
	fmt.Fprintf(out, "Window %s to %s\n\n", r.WindowFrom.Local().Format(time.DateTime), r.WindowTo.Local().Format(time.DateTime))

	s := r.Summary
	counts := [][]string{
		{"programs scanned", strconv.Itoa(s.ProgramsScanned)},
		{"not sports", strconv.Itoa(s.NotSports)},
		{"likely games", strconv.Itoa(s.ClassifiedLikely)},
		{"matched", strconv.Itoa(s.Matched)},
		{"event groups", strconv.Itoa(s.Groups)},
		{"already recorded", strconv.Itoa(s.SkippedExisting)},
		{"scheduled", strconv.Itoa(s.Scheduled)},
		{"unfit", strconv.Itoa(s.Unfit)},
		{"timers created", strconv.Itoa(s.TimersCreated)},
		{"timers conflicted", strconv.Itoa(s.TimersConflicted)},
		{"timers errored", strconv.Itoa(s.TimersErrored)},
		{"timers cancelled", strconv.Itoa(s.TimersCancelled)},
	}
	fmt.Fprintln(out, renderTable([]string{"Step", "Count"}, counts, []columnAlignment{alignLeft, alignRight}))

	writeDecisions(out, r.Decisions, showAll)
	if len(r.Errors) > 0 {
		rows := make([][]string, 0, len(r.Errors))
		for _, e := range r.Errors {
			rows = append(rows, []string{e.Type, e.Message, strconv.FormatBool(e.Retryable)})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Error", "Message", "Retryable"}, rows, nil))
	}
	return nil
}

func writeDecisions(out io.Writer, decisions []dvr.RunDecision, showAll bool) {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		if !showAll && d.Action == dvr.ActionSkipped {
			continue
		}
		rows = append(rows, []string{
			d.Action,
			d.Start.Local().Format("Mon 02 Jan 15:04"),
			d.ChannelID,
			d.Title,
			d.SubscriptionID,
			d.Reason,
		})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Action", "Start", "Channel", "Title", "Subscription", "Reason"}, rows, nil))
}
