package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ecoscan/internal/emissions"
	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/report"
	"ecoscan/internal/smells"
)

var (
	analyzeFormat string
	analyzeOut    string
	analyzeDiff   bool
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.py>",
	Short: "Detect inefficient patterns and write an optimized file",
	Long: `Analyze a Python file for inefficient coding patterns, rewrite the ones
that have a mechanical fix, and estimate the emission reduction.

The optimized text is written next to the input as optimized_<name> unless
--out is given. Runs are recorded in the history database unless --no-save
is set or storage is disabled.

Examples:
  ecoscan analyze app.py
  ecoscan analyze app.py --diff
  ecoscan analyze app.py --out /tmp/app_fast.py --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Output format (json, human, yaml)")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Path for the optimized file (default optimized_<name>)")
	analyzeCmd.Flags().BoolVar(&analyzeDiff, "diff", false, "Include a unified diff of the rewrite")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not record the run in the history")
	rootCmd.AddCommand(analyzeCmd)
}

// AnalyzeResponseCLI is the output of ecoscan analyze
type AnalyzeResponseCLI struct {
	SourceName    string                `json:"sourceName"`
	OutputPath    string                `json:"outputPath"`
	Issues        []smells.Issue        `json:"issues"`
	OptimizedCode string                `json:"optimizedCode"`
	Emissions     *emissions.Comparison `json:"emissions"`
	RunID         string                `json:"runId,omitempty"`
	Cached        bool                  `json:"cached"`
	Diff          string                `json:"diff,omitempty"`
	DiffStats     *report.DiffStats     `json:"diffStats,omitempty"`
	DurationMs    int64                 `json:"durationMs"`
}

func runAnalyze(cmd *cobra.Command, args []string) {
	format, err := parseFormat(analyzeFormat)
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

	eng, closeEngine, err := openEngine(repoRoot, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	defer closeEngine()

	ctx, cancel := newContext()
	defer cancel()

	name := filepath.Base(args[0])
	outcome, err := eng.Analyze(ctx, name, source, !analyzeNoSave)
	if err != nil {
		closeEngine()
		exitWithError(err)
	}

	outPath := analyzeOut
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(args[0]), "optimized_"+name)
	}
	if err := os.WriteFile(outPath, []byte(outcome.Optimized), 0644); err != nil {
		closeEngine()
		exitWithError(fmt.Errorf("failed to write optimized file: %w", err))
	}

	resp := &AnalyzeResponseCLI{
		SourceName:    name,
		OutputPath:    outPath,
		Issues:        outcome.Issues,
		OptimizedCode: outcome.Optimized,
		Emissions:     outcome.Emissions,
		RunID:         outcome.RunID,
		Cached:        outcome.Cached,
		DurationMs:    outcome.DurationMs,
	}
	if analyzeDiff {
		resp.Diff = report.Diff(name, source, outcome.Optimized)
		stats := report.Stats(source, outcome.Optimized)
		resp.DiffStats = &stats
	}

	printResponse(resp, format)
}

// readPythonFile reads a .py file, mapping failures to error codes.
func readPythonFile(path string) (string, error) {
	if !strings.HasSuffix(path, ".py") {
		return "", ecoerrors.NewEcoError(ecoerrors.UnsupportedFile, "only .py files can be analyzed", nil).
			WithDetails(map[string]string{"file": path})
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", ecoerrors.NewEcoError(ecoerrors.FileNotFound, "no such file: "+path, err)
	}
	if err != nil {
		return "", ecoerrors.NewEcoError(ecoerrors.InvalidInput, "failed to read "+path, err)
	}
	return string(data), nil
}

func formatAnalyzeHuman(resp *AnalyzeResponseCLI) string {
	var b strings.Builder

	if resp.Cached {
		b.WriteString(fmt.Sprintf("Analysis of %s (cached)\n", resp.SourceName))
	} else {
		b.WriteString(fmt.Sprintf("Analysis of %s\n", resp.SourceName))
	}
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(report.IssueTable(resp.Issues))
	b.WriteString("\n")

	if resp.Emissions != nil {
		b.WriteString("Estimated emissions:\n")
		b.WriteString(report.ComparisonTable(resp.Emissions))
		b.WriteString("\n")
	}

	if resp.Diff != "" {
		b.WriteString(resp.Diff)
		if resp.DiffStats != nil {
			b.WriteString(fmt.Sprintf("%d line(s) added, %d removed\n", resp.DiffStats.Added, resp.DiffStats.Removed))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Optimized code written to %s\n", resp.OutputPath))
	if resp.RunID != "" {
		b.WriteString(fmt.Sprintf("Run recorded as %s\n", resp.RunID))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
