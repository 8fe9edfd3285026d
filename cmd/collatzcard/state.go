package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/collatzcard/internal/collatz"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Compute a collatz_state.json document",
		Long: `Run every prime up to --limit through the Collatz map and print the
resulting statistics document as JSON. The output can be written to a file
and served as /collatz_state.json for the card to poll.

Example:
  collatzcard state --limit 1000 > site/collatz_state.json`,
		Args: cobra.NoArgs,
		RunE: runState,
	}

	cmd.Flags().Uint64("limit", 100, fmt.Sprintf("largest number to consider (at most %d)", collatz.MaxPrimeLimit))
	return cmd
}

func runState(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetUint64("limit")
	primes, err := collatz.Primes(limit)
	if err != nil {
		return fmt.Errorf("invalid --limit %d: %w", limit, err)
	}
	if len(primes) == 0 {
		return fmt.Errorf("no primes up to %d", limit)
	}

	st, err := collatz.BuildState(primes, time.Now())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(st)
}
