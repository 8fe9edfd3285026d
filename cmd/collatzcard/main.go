// Command collatzcard serves a web page carrying a live Collatz statistics
// card, and bundles a few Collatz utilities.
//
//	collatzcard serve -c config.yaml    # serve the page and keep the card fresh
//	collatzcard validate -c config.yaml # check a config file
//	collatzcard sequence 27             # print a trajectory
//	collatzcard state --limit 100       # print a statistics document
//	collatzcard version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set via -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "collatzcard",
		Short: "A live Collatz statistics card",
		Long: `collatzcard renders a "Collatz Tracker" card into a web page.

It polls a collatz_state.json document at a fixed interval, rewrites the
card in place and pushes each render to open browsers over Server-Sent Events.

Quick start:
  collatzcard state --limit 1000 > collatz_state.json
  python3 -m http.server 8000 &
  collatzcard serve
  open http://localhost:8080`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newValidateCmd(),
		newSequenceCmd(),
		newStateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "collatzcard %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func main() {
	// cobra has already printed the error
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
