package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"ecoscan/internal/config"
	"ecoscan/internal/dataset"
	"ecoscan/internal/paths"
)

var (
	datasetFormat  string
	datasetQuery   string
	datasetMax     int
	datasetWorkers int
	datasetRawDir  string
	datasetCSV     string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Build the labelled code smell dataset",
	Long: `Fetch Python samples from GitHub, label them with smell counts, and
estimate their CPU cycle and carbon footprint.

Set GITHUB_TOKEN (or ECOSCAN_DATASET_TOKEN) to raise the API rate limit.`,
}

var datasetFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download one Python sample per search result",
	Args:  cobra.NoArgs,
	Run:   runDatasetStage(stageFetch),
}

var datasetLabelCmd = &cobra.Command{
	Use:   "label",
	Short: "Count smells in every downloaded sample and write the CSV",
	Args:  cobra.NoArgs,
	Run:   runDatasetStage(stageLabel),
}

var datasetFootprintCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Add cpu_cycles and carbon_footprint columns to the CSV",
	Args:  cobra.NoArgs,
	Run:   runDatasetStage(stageFootprint),
}

var datasetRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run fetch, label and footprint in order",
	Args:  cobra.NoArgs,
	Run:   runDatasetStage(stageRun),
}

const (
	stageFetch     = "fetch"
	stageLabel     = "label"
	stageFootprint = "footprint"
	stageRun       = "run"
)

func init() {
	flags := datasetCmd.PersistentFlags()
	flags.StringVar(&datasetFormat, "format", "human", "Output format (json, human, yaml)")
	flags.StringVar(&datasetQuery, "query", "", "Repository search query (default dataset.query)")
	flags.IntVar(&datasetMax, "max", 0, "Maximum repositories to fetch (default dataset.maxRepos)")
	flags.IntVar(&datasetWorkers, "workers", 0, "Labelling workers (default dataset.workers)")
	flags.StringVar(&datasetRawDir, "raw-dir", "", "Sample directory (default dataset.rawDir)")
	flags.StringVar(&datasetCSV, "csv", "", "Labelled CSV path (default dataset.csvPath)")

	datasetCmd.AddCommand(datasetFetchCmd, datasetLabelCmd, datasetFootprintCmd, datasetRunCmd)
	rootCmd.AddCommand(datasetCmd)
}

// DatasetResponseCLI is the output of the dataset subcommands
type DatasetResponseCLI struct {
	Stage   string              `json:"stage"`
	CSVPath string              `json:"csvPath,omitempty"`
	Fetch   *dataset.FetchStats `json:"fetch,omitempty"`
	Rows    int                 `json:"rows"`
	Totals  *dataset.Record     `json:"totals,omitempty"`
}

// datasetConfig applies flag overrides and resolves paths against root.
func datasetConfig(repoRoot string, cfg config.DatasetConfig) config.DatasetConfig {
	if datasetQuery != "" {
		cfg.Query = datasetQuery
	}
	if datasetMax > 0 {
		cfg.MaxRepos = datasetMax
	}
	if datasetWorkers > 0 {
		cfg.Workers = datasetWorkers
	}
	if datasetRawDir != "" {
		cfg.RawDir = datasetRawDir
	}
	if datasetCSV != "" {
		cfg.CSVPath = datasetCSV
	}
	cfg.RawDir = paths.Resolve(repoRoot, cfg.RawDir)
	cfg.CSVPath = paths.Resolve(repoRoot, cfg.CSVPath)
	cfg.FetchedLog = paths.Resolve(repoRoot, cfg.FetchedLog)
	return cfg
}

func runDatasetStage(stage string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		format, err := parseFormat(datasetFormat)
		if err != nil {
			exitWithError(err)
		}

		repoRoot := mustGetRepoRoot()
		cfg := mustLoadConfig(repoRoot)
		logger := newLogger(cfg)

		// The fetched set lives in the history database when storage is on,
		// else in the plain log file.
		var store dataset.FetchedStore
		closeStore := func() {}
		if cfg.Storage.Enabled && (stage == stageFetch || stage == stageRun) {
			db, err := openDB(repoRoot, cfg, logger)
			if err != nil {
				exitWithError(err)
			}
			store = db
			closeStore = func() { _ = db.Close() }
		}

		ctx, cancel := newContext()
		defer cancel()

		dcfg := datasetConfig(repoRoot, cfg.Dataset)
		resp, err := executeStage(ctx, stage, dataset.NewPipeline(dcfg, store, logger), dcfg)
		closeStore()
		if err != nil {
			exitWithError(err)
		}
		printResponse(resp, format)
	}
}

func executeStage(ctx context.Context, stage string, p *dataset.Pipeline, cfg config.DatasetConfig) (*DatasetResponseCLI, error) {
	resp := &DatasetResponseCLI{Stage: stage, CSVPath: cfg.CSVPath}

	var records []dataset.Record
	var err error
	switch stage {
	case stageFetch:
		resp.CSVPath = ""
		resp.Fetch, err = p.Fetch(ctx)
		if resp.Fetch != nil {
			resp.Rows = resp.Fetch.Downloaded
		}
		return resp, err
	case stageLabel:
		records, err = p.Label(ctx)
	case stageFootprint:
		records, err = p.Footprint(ctx)
	case stageRun:
		records, err = p.Run(ctx)
	default:
		return nil, fmt.Errorf("unknown dataset stage %q", stage)
	}
	if err != nil {
		return nil, err
	}

	totals := dataset.Totals(records)
	resp.Rows = len(records)
	resp.Totals = &totals
	return resp, nil
}

func formatDatasetHuman(resp *DatasetResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Dataset %s\n", resp.Stage))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.Fetch != nil {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"Found", "Skipped", "Downloaded", "No sample", "Failed"})
		tbl.AppendRow(table.Row{resp.Fetch.Found, resp.Fetch.Skipped, resp.Fetch.Downloaded, resp.Fetch.NoSample, resp.Fetch.Failed})
		b.WriteString(tbl.Render() + "\n")
	}

	if t := resp.Totals; t != nil {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"Smell", "Total"})
		tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		tbl.AppendRows([]table.Row{
			{"nested_loops", humanize.Comma(int64(t.NestedLoops))},
			{"repetitive_code", humanize.Comma(int64(t.RepetitiveCode))},
			{"inefficient_algorithms", humanize.Comma(int64(t.InefficientAlgorithms))},
			{"redundant_computations", humanize.Comma(int64(t.RedundantComputations))},
		})
		if resp.Stage != stageLabel {
			tbl.AppendRows([]table.Row{
				{"cpu_cycles", humanize.Comma(t.CPUCycles)},
				{"carbon_footprint (kgCO2)", fmt.Sprintf("%.3g", t.CarbonFootprint)},
			})
		}
		tbl.AppendFooter(table.Row{"Files", resp.Rows})
		b.WriteString(tbl.Render() + "\n")
	}

	if resp.CSVPath != "" {
		b.WriteString(fmt.Sprintf("\nCSV: %s\n", resp.CSVPath))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
