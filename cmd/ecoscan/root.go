package main

import (
	"ecoscan/internal/version"

	"github.com/spf13/cobra"
)

var (
	// verbosity is the number of -v flags
	verbosity int
	// quiet silences all log output
	quiet bool
)

var rootCmd = &cobra.Command{
	Use:   "ecoscan",
	Short: "ecoscan - energy-aware Python code analysis",
	Long: `ecoscan detects inefficient coding patterns in Python source, rewrites
the ones it can fix mechanically, and estimates the emission reduction between
the original and the optimized text. It also builds a labelled dataset of
code smells from public repositories.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.SetVersionTemplate("ecoscan version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Suppress all log output")
}
