package pipeline

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Summarize computes the Tally for a completed run's Results.
func Summarize(results []Result) Tally {
	var t Tally
	for _, r := range results {
		t.Total++
		switch r.Outcome {
		case OutcomeSuccess:
			t.Succeeded++
		case OutcomeFailed:
			t.Failed++
		default:
			t.Skipped++
		}
	}
	return t
}

// PrintSummary writes the exact report shape from spec §4.6:
//
//	=== Pipeline Summary ===
//	✅ <dir>/<script> — success
//	❌ <dir>/<script> — failed (exit code N)
//	⏭ <dir> — no <script> found
//	Total: T repositories | S succeeded | F failed | K skipped
func PrintSummary(w io.Writer, results []Result) {
	fmt.Fprintln(w, "=== Pipeline Summary ===")

	for _, r := range results {
		switch r.Outcome {
		case OutcomeSuccess:
			fmt.Fprintf(w, "%s %s/%s — success\n", color.GreenString("✅"), r.Dir, r.Script)
		case OutcomeFailed:
			fmt.Fprintf(w, "%s %s/%s — failed (exit code %d)\n", color.RedString("❌"), r.Dir, r.Script, r.ExitCode)
		case OutcomeNoScript:
			fmt.Fprintf(w, "%s %s — no %s found\n", color.YellowString("⏭"), r.Dir, r.Script)
		case OutcomeMissing:
			fmt.Fprintf(w, "%s %s — directory missing\n", color.YellowString("⏭"), r.Dir)
		case OutcomeFiltered:
			fmt.Fprintf(w, "%s %s — filtered out\n", color.YellowString("⏭"), r.Dir)
		case OutcomeDryRun:
			fmt.Fprintf(w, "%s %s/%s — dry-run\n", color.CyanString("•"), r.Dir, r.Script)
		}
	}

	t := Summarize(results)
	fmt.Fprintf(w, "Total: %d repositories | %d succeeded | %d failed | %d skipped\n",
		t.Total, t.Succeeded, t.Failed, t.Skipped)
}
