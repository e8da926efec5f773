package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(cmdResolve)
}

var showSpinner = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// `tailindex resolve` prints the URL the watcher would stream right now.
var cmdResolve = &cobra.Command{
	Use:   "resolve <pattern> <url>",
	Short: "Fetch the listing once and print the file that would be watched",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, ctrl, err := prepare(cmd, args, os.Stderr)
		if err != nil {
			return err
		}

		if showSpinner() {
			spin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
			spin.Suffix = " Fetching listing..."
			spin.Start()
			defer spin.Stop()
		}

		fileURL, err := ctrl.Resolve(cmd.Context(), target)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fileURL)
		return nil
	},
}
