package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tailindex/internal/app"
)

func init() {
	rootCmd.AddCommand(cmdStatus)
	cmdStatus.Flags().IntVarP(&statusTimeoutSeconds, "timeout", "t", 2, "Timeout in seconds for the status query")
}

var statusTimeoutSeconds int

// `tailindex status` asks a watcher started with --status whether it streams.
// Prints "streaming" or "idle".
var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Query a running watcher over its status socket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controllerFactory(app.Options{Logger: app.NewLogger(os.Stderr, flagVerbose)})
		st, err := ctrl.Status(cmd.Context(), time.Duration(statusTimeoutSeconds)*time.Second)
		if err != nil {
			return err
		}
		if st.Streaming {
			fmt.Fprintln(cmd.OutOrStdout(), "streaming")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "idle")
		}
		return nil
	},
}
