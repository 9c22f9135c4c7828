package main

import (
	"fmt"
	"io"
	"time"

	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/scheduler"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxReasonWidth = 60

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

// renderReport prints one row per checked target followed by the cycle summary.
func renderReport(out io.Writer, report models.CycleReport) {
	if len(report.Results) == 0 {
		fmt.Fprintln(out, "No targets were due.")
		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"Target", "Status", "Changes", "Duration", "Reason"})
	for _, r := range report.Results {
		changes := ""
		if r.Changes.IsMeaningful() {
			changes = fmt.Sprintf("+%d / -%d", r.Changes.Added(), r.Changes.Removed())
		}
		t.AppendRow(table.Row{
			r.Target.String(),
			string(r.Status),
			changes,
			r.Duration.Round(time.Millisecond).String(),
			text.Trim(r.Reason(), maxReasonWidth),
		})
	}

	s := report.Summary()
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d checked", s.Total),
		fmt.Sprintf("%d changed", s.Changed),
		fmt.Sprintf("%d new", s.Established),
		fmt.Sprintf("%d skipped", s.Skipped),
		fmt.Sprintf("%d failed", s.Failed),
	})
	t.Render()
}

// renderTargets prints the scheduling state of every configured target.
func renderTargets(out io.Writer, statuses []scheduler.TargetStatus, now time.Time) {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No targets configured.")
		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"Name", "URL", "Active", "Interval", "Last Check", "Next Check"})
	for _, st := range statuses {
		lastCheck, nextCheck := "never", "now"
		if st.Checked {
			lastCheck = humanize.RelTime(st.LastCheck, now, "ago", "from now")
			if !st.Due {
				nextCheck = humanize.RelTime(st.NextDue, now, "ago", "from now")
			}
		}
		if !st.Target.Active {
			nextCheck = "paused"
		}
		if st.Err != nil {
			lastCheck = "unknown"
		}
		t.AppendRow(table.Row{
			st.Target.Name,
			st.Target.URL,
			yesNo(st.Target.Active),
			st.Interval.String(),
			lastCheck,
			nextCheck,
		})
	}
	t.Render()
}

// renderHistory prints journal rows newest first.
func renderHistory(out io.Writer, entries []datastore.JournalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No checks recorded yet.")
		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"When", "Target", "Status", "+", "-", "Reason"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			humanize.Time(e.CheckedAt),
			e.TargetName,
			e.Status,
			e.LinesAdded,
			e.LinesRemoved,
			text.Trim(e.Reason, maxReasonWidth),
		})
	}
	t.Render()
}

// renderChangeSet prints the stored change set of a target, one marker per line.
func renderChangeSet(out io.Writer, target models.Target, record *models.SnapshotRecord) {
	fmt.Fprintf(out, "%s\nlast checked %s\n", target.String(), humanize.Time(record.LastCheck))
	if !record.LastDiff.IsMeaningful() {
		fmt.Fprintln(out, "No change recorded since the baseline was established.")
		return
	}
	fmt.Fprintf(out, "changed %s (%s)\n\n",
		humanize.Time(record.LastDiff.DetectedAt),
		fmt.Sprintf("+%d / -%d lines", record.LastDiff.Added(), record.LastDiff.Removed()),
	)
	for _, line := range record.LastDiff.Lines() {
		fmt.Fprintln(out, line)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
