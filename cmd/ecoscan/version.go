package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecoscan/internal/smells"
	"ecoscan/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "human", "Output format (json, human, yaml)")
	rootCmd.AddCommand(versionCmd)
}

// parserName names the compiled-in analysis backend.
func parserName() string {
	if smells.IsAvailable() {
		return "tree-sitter"
	}
	return "unavailable (built without cgo)"
}

func runVersion(cmd *cobra.Command, args []string) {
	format, err := parseFormat(versionFormat)
	if err != nil {
		exitWithError(err)
	}
	if format == FormatHuman {
		fmt.Println(version.Full())
		fmt.Println("Parser: " + parserName())
		return
	}
	printResponse(version.Get(parserName()), format)
}
