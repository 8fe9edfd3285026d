package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/collatzcard/internal/collatz"
)

var (
	startValue = color.New(color.FgCyan, color.Bold).SprintFunc()
	peakValue  = color.New(color.FgYellow, color.Bold).SprintFunc()
	finalValue = color.New(color.FgGreen).SprintFunc()
	labelText  = color.New(color.Faint).SprintFunc()
)

func newSequenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence N [N...]",
		Short: "Print the Collatz sequence for one or more numbers",
		Long: `Print the Collatz sequence for each positive integer given.

The starting value, the peak and the final 1 are highlighted when the output
is a terminal. Only the first --limit values of each sequence are kept; step
counts and the peak always cover the full walk. A walk that needs --guard
steps or more is an error.

With --summary the stopping times and peak follow each sequence. With
--report a short summary block replaces the sequence. --export-json writes
the walk of a single start value to a file.

Example:
  collatzcard sequence 27
  collatzcard sequence --summary 7 27 97
  collatzcard sequence --report --limit 20 --export-json walk.json 837799`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSequence,
	}

	flags := cmd.Flags()
	flags.Bool("summary", false, "follow each sequence with its stopping times and peak")
	flags.Bool("report", false, "print a summary block instead of the sequence")
	flags.Int("limit", collatz.DefaultDisplayLimit, "number of sequence values to keep (0 keeps all)")
	flags.Int("guard", collatz.DefaultGuard, "maximum number of steps before giving up")
	flags.String("export-json", "", "write the walk as JSON to this path (single start value only)")
	return cmd
}

func runSequence(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	summary, _ := flags.GetBool("summary")
	report, _ := flags.GetBool("report")
	limit, _ := flags.GetInt("limit")
	guard, _ := flags.GetInt("guard")
	exportPath, _ := flags.GetString("export-json")

	if limit < 0 {
		return fmt.Errorf("invalid --limit %d: must not be negative", limit)
	}
	if exportPath != "" && len(args) != 1 {
		return errors.New("--export-json takes exactly one start value")
	}

	out := cmd.OutOrStdout()
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("invalid start %q: must be a positive integer", arg)
		}

		w, err := collatz.Run(n, limit, guard)
		if err != nil {
			return fmt.Errorf("sequence for %d: %w", n, err)
		}

		switch {
		case report:
			fmt.Fprintln(out, w.Summary())
		case summary:
			fmt.Fprintf(out, "%s %s: %s\n", labelText("Sequence for"), startValue(n), highlight(w))
			fmt.Fprintf(out, "%s %d\n", labelText("Stopping time:"), w.Steps)
			fmt.Fprintf(out, "%s %d\n", labelText("Total stopping time:"), w.Steps)
			fmt.Fprintf(out, "%s %s\n", labelText("Peak:"), peakValue(w.MaxValue))
			trimmedNote(out, w)
		default:
			fmt.Fprintln(out, highlight(w))
			trimmedNote(out, w)
		}

		if exportPath != "" {
			if err := exportWalk(exportPath, w); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved JSON payload to %s\n", exportPath)
		}
	}
	return nil
}

func trimmedNote(out io.Writer, w collatz.Walk) {
	if w.Truncated {
		fmt.Fprintln(out, labelText(collatz.TrimmedNote))
	}
}

func exportWalk(path string, w collatz.Walk) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode walk: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to export walk: %w", err)
	}
	return nil
}

// highlight formats the retained part of a walk with the start, the peak and
// the final 1 coloured. A trimmed walk has no final 1 to mark.
func highlight(w collatz.Walk) string {
	last := len(w.Sequence) - 1

	parts := make([]string, len(w.Sequence))
	for i, v := range w.Sequence {
		s := strconv.FormatUint(v, 10)
		switch {
		case i == 0:
			parts[i] = startValue(s)
		case v == w.MaxValue:
			parts[i] = peakValue(s)
		case i == last && !w.Truncated:
			parts[i] = finalValue(s)
		default:
			parts[i] = s
		}
	}
	return strings.Join(parts, " "+collatz.Arrow+" ")
}
