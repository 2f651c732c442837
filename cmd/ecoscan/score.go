package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ecoscan/internal/complexity"
	"ecoscan/internal/emissions"
	"ecoscan/internal/engine"
	"ecoscan/internal/report"
)

var (
	scoreFormat    string
	scoreOptimized bool
	scoreHotspot   int
)

var scoreCmd = &cobra.Command{
	Use:   "score <file.py>",
	Short: "Estimate the emissions of a Python file",
	Long: `Compute the structural complexity of a Python file and its emission
estimate, plus cyclomatic and cognitive complexity per function.
--optimized applies the discount given to rewritten code.`,
	Args: cobra.ExactArgs(1),
	Run:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "human", "Output format (json, human, yaml)")
	scoreCmd.Flags().BoolVar(&scoreOptimized, "optimized", false, "Score the file as optimized code")
	scoreCmd.Flags().IntVar(&scoreHotspot, "hotspot", 10, "Highlight functions at or above this cyclomatic complexity")
	rootCmd.AddCommand(scoreCmd)
}

// ScoreResponseCLI is the output of ecoscan score
type ScoreResponseCLI struct {
	File       string                          `json:"file"`
	Breakdown  *emissions.Breakdown            `json:"breakdown"`
	Complexity *complexity.FileComplexity      `json:"complexity,omitempty"`
	Hotspots   []complexity.FunctionComplexity `json:"hotspots,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) {
	format, err := parseFormat(scoreFormat)
	if err != nil {
		exitWithError(err)
	}

	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	source, err := readPythonFile(args[0])
	if err != nil {
		exitWithError(err)
	}

	ctx, cancel := newContext()
	defer cancel()

	// Scoring never touches the history.
	eng := engine.NewEngine(nil, logger, cfg)
	breakdown, err := eng.Measure(ctx, source, scoreOptimized)
	if err != nil {
		exitWithError(err)
	}
	functions, err := eng.Complexity(ctx, source)
	if err != nil {
		exitWithError(err)
	}
	logger.Debug("Scored file", "file", args[0], "complexity", breakdown.Complexity, "functions", functions.FunctionCount)

	printResponse(&ScoreResponseCLI{
		File:       args[0],
		Breakdown:  breakdown,
		Complexity: functions,
		Hotspots:   functions.Hotspots(scoreHotspot),
	}, format)
}

func formatScoreHuman(resp *ScoreResponseCLI) string {
	var b strings.Builder
	kind := "original"
	if resp.Breakdown.Optimized {
		kind = "optimized"
	}
	b.WriteString(fmt.Sprintf("Emission estimate for %s (%s)\n", resp.File, kind))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(report.BreakdownTable(resp.Breakdown))
	if resp.Complexity != nil && resp.Complexity.FunctionCount > 0 {
		b.WriteString("\nFunctions:\n")
		b.WriteString(report.FunctionTable(resp.Complexity.Functions))
		b.WriteString(fmt.Sprintf("%d function(s), average cyclomatic %.1f, %d hotspot(s)\n",
			resp.Complexity.FunctionCount, resp.Complexity.AverageCyclomatic, len(resp.Hotspots)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
