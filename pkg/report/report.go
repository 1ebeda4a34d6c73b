// SPDX-License-Identifier: GPL-3.0-or-later

// Package report renders a coverage run for people (text) and machines (json).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/netdata/optprobe/pkg/coverage"
	"github.com/netdata/optprobe/pkg/probe"
	"github.com/netdata/optprobe/pkg/strmutil"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON}

const stderrWidth = 160

// Write renders rep to w in the given format.
func Write(w io.Writer, rep *coverage.Report, format string) error {
	switch format {
	case FormatText, "":
		return writeText(w, rep)
	case FormatJSON:
		return writeJSON(w, rep)
	default:
		return fmt.Errorf("unknown report format '%s'", format)
	}
}

func writeJSON(w io.Writer, rep *coverage.Report) error {
	v := struct {
		*coverage.Report
		Passed bool `json:"passed"`
	}{
		Report: rep,
		Passed: rep.Passed(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(w io.Writer, rep *coverage.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "run %s: profile '%s' (%s)\n", rep.RunID, rep.Profile, strings.Join(rep.Command, " "))
	if rep.ToolVersion != "" {
		fmt.Fprintf(tw, "tool version: %s\n", rep.ToolVersion)
	}
	fmt.Fprintf(tw, "advertised: %d, covered: %d, untested: %d, corpus files: %d\n",
		rep.Advertised.Len(), rep.Covered.Len(), rep.Untested.Len(), rep.CorpusFiles)

	if rep.DryRun {
		fmt.Fprintln(tw, "\nuntested:")
		for _, opt := range rep.Untested.Sorted() {
			fmt.Fprintf(tw, "  %s\n", opt)
		}
		return tw.Flush()
	}

	if b := rep.Baseline; b != nil {
		fmt.Fprintf(tw, "\nplain invocation: %s\n", b.Command)
		fmt.Fprintf(tw, "  exit code: %d\n", b.ExitCode)
		if b.Status != probe.StatusSuccess && b.Stderr != "" {
			fmt.Fprintf(tw, "  stderr: %s\n", strmutil.TruncateText(oneLine(b.Stderr), stderrWidth))
		}
		fmt.Fprintf(tw, "\nresult: %s (%s)\n", verdict(rep), rep.Duration.Round(time.Millisecond))
		return tw.Flush()
	}

	if skipped := rep.Skipped(); len(skipped) > 0 {
		fmt.Fprintf(tw, "\nskipped (%d):\n", len(skipped))
		for _, o := range skipped {
			fmt.Fprintf(tw, "  %s\t%s\n", o.Option, o.Reason)
		}
	}

	if failed := rep.Failed(); len(failed) > 0 {
		fmt.Fprintf(tw, "\nfailed (%d):\n", len(failed))
		for _, o := range failed {
			detail := o.Reason
			if o.Stderr != "" {
				detail = strmutil.TruncateText(oneLine(o.Stderr), stderrWidth)
			}
			fmt.Fprintf(tw, "  %s\texit %d\t%s\n", o.Option, o.ExitCode, detail)
		}
	}

	fmt.Fprintf(tw, "\nresult: %s (%d succeeded, %d skipped, %d failed in %s)\n",
		verdict(rep), len(rep.Succeeded()), len(rep.Skipped()), len(rep.Failed()), rep.Duration.Round(time.Millisecond))

	return tw.Flush()
}

func verdict(rep *coverage.Report) string {
	if rep.Passed() {
		return "PASS"
	}
	return "FAIL"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
