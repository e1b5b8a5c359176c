// Package report renders the final per-task results. Pure aggregation
// and display; everything is ephemeral to the writer.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TaskResult is one row of the final report: the best-ever candidate
// found for a task.
type TaskResult struct {
	Task      string  `json:"task"`
	Fitness   float64 `json:"fitness"`
	Passed    int     `json:"passed"`
	Total     int     `json:"total"`
	DurationS float64 `json:"duration_s"`
	Code      string  `json:"code"`
}

// Write renders results in the requested format (table, markdown, json).
func Write(w io.Writer, results []TaskResult, format string) error {
	switch format {
	case "markdown":
		return writeMarkdown(results, w)
	case "json":
		return writeJSON(results, w)
	default:
		return writeTable(results, w)
	}
}

func writeTable(results []TaskResult, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tFITNESS\tPASS\tDURATION")
	fmt.Fprintln(tw, strings.Repeat("-", 48))
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.3f\t%d/%d\t%.5fs\n", r.Task, r.Fitness, r.Passed, r.Total, r.DurationS)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(w, "\n--- %s ---\n", r.Task)
		fmt.Fprintln(w, indent(strings.TrimSpace(r.Code), "    "))
	}
	return nil
}

func writeMarkdown(results []TaskResult, w io.Writer) error {
	fmt.Fprintln(w, "| Task | Fitness | Pass | Duration |")
	fmt.Fprintln(w, "|---|---|---|---|")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %.3f | %d/%d | %.5fs |\n", r.Task, r.Fitness, r.Passed, r.Total, r.DurationS)
	}
	for _, r := range results {
		fmt.Fprintf(w, "\n### %s\n\n```python\n%s\n```\n", r.Task, strings.TrimSpace(r.Code))
	}
	return nil
}

func writeJSON(results []TaskResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if ln != "" {
			lines[i] = prefix + ln
		}
	}
	return strings.Join(lines, "\n")
}
