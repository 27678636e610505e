// Command hbfs turns a webcam into a finger-tap sampler: touching a fingertip
// to the thumb of the same hand plays that finger's clip, and touching both
// thumbs together plays the full track.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time)
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "hbfs",
		Short: "Harder Better Faster Stronger - play samples with your fingers",
		Long: `Harder Better Faster Stronger

Watches your hands through the webcam. Touch a fingertip to the thumb of the
same hand to play that finger's sample; bring both thumbs together to play the
full track. Use 'hbfs samples' to change which clip each finger plays.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ~/.hbfs/config.yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start a play session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), configPath)
		},
	}

	rootCmd.AddCommand(runCmd, newSamplesCmd(&configPath))
	return rootCmd
}
