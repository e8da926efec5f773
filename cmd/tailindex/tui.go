package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tailindex/internal/tui"
)

func init() {
	rootCmd.AddCommand(cmdTUI)
}

var cmdTUI = &cobra.Command{
	Use:   "tui <pattern> <url>",
	Short: "Watch the listing inside the interactive terminal UI",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sink := &tui.LogSink{}
		target, ctrl, err := prepare(cmd, args, sink)
		if err != nil {
			return err
		}
		err = tui.Run(cmd.Context(), ctrl, target, sink)
		// records logged after the viewer closed
		if pending := sink.Pending(); len(pending) > 0 {
			fmt.Fprintln(os.Stderr, strings.Join(pending, "\n"))
		}
		return err
	},
}
