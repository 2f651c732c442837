package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"ecoscan/internal/report"
	"ecoscan/internal/storage"
)

var (
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded analysis runs",
	Long: `List analysis runs recorded by ecoscan analyze and the HTTP front end,
newest first. With a run id, show that run's issues.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human, yaml)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}

// HistoryResponseCLI is the output of ecoscan history
type HistoryResponseCLI struct {
	Runs  []storage.Run `json:"runs"`
	Count int           `json:"count"`
}

// RunResponseCLI is the output of ecoscan history <run-id>
type RunResponseCLI struct {
	*storage.RunDetail
}

func runHistory(cmd *cobra.Command, args []string) {
	format, err := parseFormat(historyFormat)
	if err != nil {
		exitWithError(err)
	}

	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	eng, closeEngine, err := openEngine(repoRoot, cfg, logger)
	if err != nil {
		exitWithError(err)
	}

	ctx, cancel := newContext()
	defer cancel()

	var resp interface{}
	if len(args) == 1 {
		detail, gerr := eng.GetRun(ctx, args[0])
		err = gerr
		resp = &RunResponseCLI{RunDetail: detail}
	} else {
		runs, lerr := eng.History(ctx, historyLimit)
		err = lerr
		resp = &HistoryResponseCLI{Runs: runs, Count: len(runs)}
	}
	closeEngine()
	if err != nil {
		exitWithError(err)
	}

	printResponse(resp, format)
}

func formatHistoryHuman(resp *HistoryResponseCLI) string {
	if resp.Count == 0 {
		return "No runs recorded yet."
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"ID", "Source", "When", "Issues", "Size", "Reduction"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for _, run := range resp.Runs {
		tbl.AppendRow(table.Row{
			run.ID,
			run.SourceName,
			humanize.Time(run.CreatedAt),
			run.IssueCount,
			humanize.Bytes(uint64(run.SourceBytes)),
			report.FormatReduction(run.Reduction),
		})
	}
	tbl.AppendFooter(table.Row{"", "", "", "", "Runs", resp.Count})
	return tbl.Render()
}

func formatRunHuman(resp *RunResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Run %s: %s\n", resp.ID, resp.SourceName))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Recorded:   %s (%s)\n", resp.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(resp.CreatedAt)))
	b.WriteString(fmt.Sprintf("Source:     %s\n", humanize.Bytes(uint64(resp.SourceBytes))))
	b.WriteString(fmt.Sprintf("Emissions:  %s -> %s (%s)\n\n",
		report.FormatEmissions(resp.OriginalEmissions),
		report.FormatEmissions(resp.OptimizedEmissions),
		report.FormatReduction(resp.Reduction)))
	b.WriteString(report.IssueTable(resp.Issues))
	return strings.TrimSuffix(b.String(), "\n")
}
