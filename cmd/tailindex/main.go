package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tailindex [flags] <pattern> <url>",
	Short: "tailindex: follow the newest matching file of a remote listing",
	Long: `tailindex polls an HTTP directory listing, picks the file whose name matches
the pattern and streams it through the worker, switching whenever a different
file becomes current.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, ctrl, err := prepare(cmd, args, os.Stderr)
		if err != nil {
			return err
		}
		return ctrl.Watch(cmd.Context(), target)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
