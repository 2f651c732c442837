package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ecoscan/internal/config"
	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/labelling"
	"ecoscan/internal/paths"
	"ecoscan/internal/slogutil"
)

// FetchStats summarises one fetch pass.
type FetchStats struct {
	Found      int `json:"found"`
	Skipped    int `json:"skipped"`
	Downloaded int `json:"downloaded"`
	NoSample   int `json:"noSample"`
	Failed     int `json:"failed"`
}

// Pipeline runs the fetch, label and footprint stages over one dataset
// directory.
type Pipeline struct {
	cfg    config.DatasetConfig
	client *Client
	store  FetchedStore
	logger *slog.Logger
}

// NewPipeline creates a pipeline. Relative paths in cfg are used as given.
func NewPipeline(cfg config.DatasetConfig, store FetchedStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if store == nil {
		store = NewLogStore(cfg.FetchedLog)
	}
	return &Pipeline{
		cfg:    cfg,
		client: NewClient(cfg.APIBaseURL, cfg.Token, logger),
		store:  store,
		logger: logger,
	}
}

// Fetch downloads one Python sample per repository returned by the search,
// skipping repositories fetched by earlier runs. Per-repository failures
// are logged and counted, not returned.
func (p *Pipeline) Fetch(ctx context.Context) (*FetchStats, error) {
	if err := os.MkdirAll(p.cfg.RawDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", p.cfg.RawDir, err)
	}

	fetched, err := p.store.FetchedRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fetched repositories: %w", err)
	}

	repos, err := p.client.SearchRepositories(ctx, p.cfg.Query, p.cfg.MaxRepos)
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.FetchFailed, "repository search failed", err)
	}

	stats := &FetchStats{Found: len(repos)}
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if fetched[repo.Name] {
			stats.Skipped++
			continue
		}
		if !paths.SafeFileName(repo.Name + ".py") {
			p.logger.Warn("Skipping repository with unsafe name", "repo", repo.Name)
			stats.Failed++
			continue
		}

		sample, ok, err := p.client.DownloadSample(ctx, repo.ContentsURL)
		if err != nil {
			p.logger.Warn("Failed to download sample", "repo", repo.FullName, "error", err.Error())
			stats.Failed++
			continue
		}
		if !ok {
			p.logger.Debug("Repository has no Python file at its root", "repo", repo.FullName)
			stats.NoSample++
			continue
		}

		dest := filepath.Join(p.cfg.RawDir, repo.Name+".py")
		if err := os.WriteFile(dest, sample, 0644); err != nil {
			return stats, fmt.Errorf("failed to write %s: %w", dest, err)
		}
		if err := p.store.MarkFetched(ctx, repo.Name); err != nil {
			return stats, fmt.Errorf("failed to record %s: %w", repo.Name, err)
		}
		fetched[repo.Name] = true
		stats.Downloaded++
		p.logger.Info("Fetched sample", "repo", repo.FullName, "bytes", len(sample))
	}
	return stats, nil
}

// Label counts smells in every regular file of the raw directory and writes
// the labelled CSV. Rows are sorted by file name.
func (p *Pipeline) Label(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(p.cfg.RawDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.cfg.RawDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	records := make([]Record, len(names))
	work := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for i := range names {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			labeller := labelling.NewLabeller(p.cfg.LongFunctionThreshold, p.logger)
			for i := range work {
				src, err := os.ReadFile(filepath.Join(p.cfg.RawDir, names[i]))
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", names[i], err)
				}
				smells, err := labeller.Label(gctx, src)
				if err != nil {
					return fmt.Errorf("failed to label %s: %w", names[i], err)
				}
				records[i] = Record{Filename: names[i], Smells: smells}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := WriteCSV(p.cfg.CSVPath, records, false); err != nil {
		return nil, err
	}
	p.logger.Info("Labelled dataset",
		"files", len(records),
		"workers", workers,
		"csv", p.cfg.CSVPath,
		"duration", time.Since(start).String(),
	)
	return records, nil
}

// Footprint adds the cpu_cycles and carbon_footprint columns to the
// labelled CSV, recomputing them if already present.
func (p *Pipeline) Footprint(ctx context.Context) ([]Record, error) {
	records, err := ReadCSV(p.cfg.CSVPath)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].ApplyFootprint()
	}
	if err := WriteCSV(p.cfg.CSVPath, records, true); err != nil {
		return nil, err
	}
	p.logger.Info("Calculated footprints", "rows", len(records), "csv", p.cfg.CSVPath)
	return records, nil
}

// Run executes fetch, label and footprint in order.
func (p *Pipeline) Run(ctx context.Context) ([]Record, error) {
	stats, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Fetch complete",
		"found", stats.Found,
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	if _, err := p.Label(ctx); err != nil {
		return nil, err
	}
	return p.Footprint(ctx)
}

// Totals sums smell counts and footprints across records.
func Totals(records []Record) Record {
	total := Record{Filename: fmt.Sprintf("%d files", len(records))}
	for _, r := range records {
		total.NestedLoops += r.NestedLoops
		total.RepetitiveCode += r.RepetitiveCode
		total.InefficientAlgorithms += r.InefficientAlgorithms
		total.RedundantComputations += r.RedundantComputations
		total.CPUCycles += r.CPUCycles
		total.CarbonFootprint += r.CarbonFootprint
	}
	return total
}
