package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// formatNodesText formats CLINode results as "file:line:col kind text" lines.
func formatNodesText(w io.Writer, nodes []CLINode) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n", n.File, n.Line, n.Column, n.Kind, n.Text)
	}
}

// formatValuesText formats script outputs one per line.
func formatValuesText(w io.Writer, values []any) {
	for _, v := range values {
		fmt.Fprintln(w, displayValue(v))
	}
}

// formatRunsText formats CLIRun results as aligned columns.
func formatRunsText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUITE\tCASE\tOUTCOME\tRESULTS\tPULLS\tSTOP\tTIME")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%.3fms\n",
			r.Suite, r.Case, r.Outcome, r.Results, r.Pulls, r.Stop, r.DurationMS)
	}
	tw.Flush()
}

// formatSummariesText formats CLISummary results as aligned columns.
func formatSummariesText(w io.Writer, sums []CLISummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUITE\tCASE\tRUNS\tFAULTS\tRESULTS\tPULLS\tMEAN\tMIN\tMAX")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.3fms\t%.3fms\t%.3fms\n",
			s.Suite, s.Case, s.Runs, s.Faults, s.MeanResults, s.MeanPulls, s.MeanMS, s.MinMS, s.MaxMS)
	}
	tw.Flush()
}

// formatStatsText formats per-strategy statistics as aligned columns.
func formatStatsText(w io.Writer, stats []CLIStat) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tCALLS\tPULLS\tOUTPUTS\tFAULTS\tTIME")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.3fms\n",
			s.Strategy, s.Calls, s.Pulls, s.Outputs, s.Faults, s.TimeMS)
	}
	tw.Flush()
}

// formatBindingsText formats the final search bindings, sorted by key.
func formatBindingsText(w io.Writer, bindings map[string]any) {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %s\n", k, displayValue(bindings[k]))
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. Search details and statistics go to stderr so stdout carries
// only results.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLINode:
		formatNodesText(w, v)
	case []any:
		formatValuesText(w, v)
	case []CLIRun:
		formatRunsText(w, v)
	case []CLISummary:
		formatSummariesText(w, v)
	case map[string]int64:
		fmt.Fprintf(w, "deleted %d run(s)\n", v["deleted"])
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if s := result.Search; s != nil {
		fmt.Fprintf(os.Stderr, "\n%d result(s) of %s, bound %s, %d pull(s), stopped: %s, %.3fms\n",
			s.Results, s.Strategy, s.Bound, s.Pulls, s.Stop, s.ElapsedMS)
	}
	if len(result.Bindings) > 0 {
		fmt.Fprintln(os.Stderr, "\nBindings:")
		formatBindingsText(os.Stderr, result.Bindings)
	}
	if len(result.Stats) > 0 {
		fmt.Fprintln(os.Stderr)
		formatStatsText(os.Stderr, result.Stats)
	}
	return nil
}

// outputResult writes a result in the selected format to the command's
// output.
func outputResult(cmd *cobra.Command, result CLIResult) error {
	w := cmd.OutOrStdout()
	if flagFormat == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(cmd *cobra.Command, command string, err error) error {
	return outputErrorWith(cmd, CLIResult{Command: command}, err)
}

// outputErrorWith is outputError for commands that have partial results to
// report alongside the error.
func outputErrorWith(cmd *cobra.Command, result CLIResult, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		if result.Results != nil {
			_ = outputResultText(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		return err
	}
	result.Error = err.Error()
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
