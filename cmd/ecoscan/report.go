package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ecoscan/internal/emissions"
	"ecoscan/internal/paths"
	"ecoscan/internal/report"
	"ecoscan/internal/smells"
)

var (
	reportOut   string
	reportTitle string
)

var reportCmd = &cobra.Command{
	Use:   "report <original.py> <optimized.py>",
	Short: "Render an HTML chart comparing two versions of a file",
	Long: `Score an original and an optimized Python file and render the
comparison as an HTML bar chart, followed by a chart of the patterns
detected in the original. The metric table is printed as well.

Examples:
  ecoscan report app.py optimized_app.py
  ecoscan report app.py optimized_app.py --out build/app.html`,
	Args: cobra.ExactArgs(2),
	Run:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "HTML output path (default <report.outDir>/report.html)")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Chart title (default the original file name)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	original, err := readPythonFile(args[0])
	if err != nil {
		exitWithError(err)
	}
	optimized, err := readPythonFile(args[1])
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

	cmp, err := eng.Compare(ctx, original, optimized)
	if err != nil {
		exitWithError(err)
	}
	outcome, err := eng.Analyze(ctx, filepath.Base(args[0]), original, false)
	if err != nil {
		exitWithError(err)
	}
	result := outcome.Result()

	out := reportOut
	if out == "" {
		out = filepath.Join(paths.Resolve(repoRoot, cfg.Report.OutDir), "report.html")
	}
	title := reportTitle
	if title == "" {
		title = filepath.Base(args[0])
	}

	if err := writeReport(out, title, cmp, result); err != nil {
		exitWithError(err)
	}

	info, err := os.Stat(out)
	if err != nil {
		exitWithError(err)
	}
	logger.Info("Rendered report", "path", out, "bytes", info.Size())

	fmt.Print(report.ComparisonTable(cmp))
	fmt.Printf("\n%s\n", report.Summary(result, cmp))
	fmt.Printf("Report written to %s (%s)\n", out, humanize.Bytes(uint64(info.Size())))
}

// writeReport renders the charts for cmp and result into path, creating its
// directory.
func writeReport(path, title string, cmp *emissions.Comparison, result *smells.Result) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return report.RenderReport(f, title, cmp, result)
}
