package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "gcdsp",
	Short: "A GameCube DSP ADPCM container utility.",
	Long:  "A CLI tool to identify, inspect and split GameCube DSP ADPCM audio containers.",
	Run: func(cmd *cobra.Command, args []string) {
		// Display help when no subcommand is provided
		fmt.Fprintln(stdout(cmd), "Usage: gcdsp [command]")
		fmt.Fprintln(stdout(cmd), "Use 'gcdsp help' for a list of commands.")
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(cmd)
	},
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

var quiet bool
var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress command output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Increase command output")
}

// stdout is where a command writes its results. --quiet discards them.
func stdout(cmd *cobra.Command) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

func Execute() error {
	return rootCmd.Execute()
}
