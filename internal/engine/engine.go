// Package engine ties the analyzer, the emission scorer and the run history
// together. The CLI and the HTTP front end both go through an Engine.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ecoscan/internal/complexity"
	"ecoscan/internal/config"
	"ecoscan/internal/emissions"
	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/slogutil"
	"ecoscan/internal/smells"
	"ecoscan/internal/storage"
	"ecoscan/internal/version"
)

// Engine runs analyses. It is safe for concurrent use: every call builds its
// own parser.
type Engine struct {
	db     *storage.DB
	cache  *storage.Cache
	logger *slog.Logger
	config *config.Config
}

// Outcome is the result of one analysis.
type Outcome struct {
	SourceName string                `json:"sourceName"`
	Issues     []smells.Issue        `json:"issues"`
	Optimized  string                `json:"optimizedCode"`
	Emissions  *emissions.Comparison `json:"emissions"`
	RunID      string                `json:"runId,omitempty"`
	Cached     bool                  `json:"cached"`
	DurationMs int64                 `json:"durationMs"`
}

// cachedAnalysis is the cached part of an Outcome. It depends only on the
// source text.
type cachedAnalysis struct {
	Issues    []smells.Issue        `json:"issues"`
	Optimized string                `json:"optimized"`
	Emissions *emissions.Comparison `json:"emissions"`
}

// Result returns the analyzer view of the outcome.
func (o *Outcome) Result() *smells.Result {
	return &smells.Result{Issues: o.Issues, Optimized: o.Optimized}
}

// NewEngine creates an engine. db may be nil, in which case runs are not
// recorded, nothing is cached and history lookups fail with STORAGE_ERROR.
func NewEngine(db *storage.DB, logger *slog.Logger, cfg *config.Config) *Engine {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{db: db, logger: logger, config: cfg}
	if db != nil {
		e.cache = storage.NewCache(db, time.Duration(cfg.Storage.CacheTTLSeconds)*time.Second)
	}
	return e
}

// cacheKey includes the version so a new release never serves results of
// an older analyzer.
func cacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "analysis:" + version.Version + ":" + hex.EncodeToString(sum[:])
}

// lookup returns a cached analysis of source. Cache failures are logged and
// treated as misses.
func (e *Engine) lookup(ctx context.Context, key string) (*cachedAnalysis, bool) {
	if !e.cache.Enabled() {
		return nil, false
	}
	value, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("Analysis cache lookup failed", "error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var hit cachedAnalysis
	if err := json.Unmarshal([]byte(value), &hit); err != nil || hit.Emissions == nil {
		e.logger.Warn("Discarding unreadable cache entry", "key", key)
		return nil, false
	}
	return &hit, true
}

func (e *Engine) remember(ctx context.Context, key string, a *cachedAnalysis) {
	if !e.cache.Enabled() {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, string(data)); err != nil {
		e.logger.Warn("Failed to cache analysis", "error", err.Error())
	}
}

// analyze runs the analyzer and the scorer, going through the cache.
func (e *Engine) analyze(ctx context.Context, source string) (*cachedAnalysis, bool, error) {
	key := cacheKey(source)
	if hit, ok := e.lookup(ctx, key); ok {
		return hit, true, nil
	}

	result, err := smells.NewAnalyzer(e.logger).Analyze(ctx, source)
	if err != nil {
		return nil, false, err
	}
	cmp, err := emissions.NewScorer().Compare(ctx, source, result.Optimized)
	if err != nil {
		return nil, false, err
	}

	a := &cachedAnalysis{Issues: result.Issues, Optimized: result.Optimized, Emissions: cmp}
	if a.Issues == nil {
		a.Issues = []smells.Issue{}
	}
	e.remember(ctx, key, a)
	return a, false, nil
}

// HistoryEnabled reports whether runs are recorded.
func (e *Engine) HistoryEnabled() bool {
	return e.db != nil
}

// Analyze detects patterns in source, scores the original and rewritten
// texts, and records the run when save is set and history is enabled.
func (e *Engine) Analyze(ctx context.Context, name, source string, save bool) (*Outcome, error) {
	start := time.Now()

	a, cached, err := e.analyze(ctx, source)
	if err != nil {
		return nil, err
	}
	cmp := a.Emissions

	outcome := &Outcome{
		SourceName: name,
		Issues:     a.Issues,
		Optimized:  a.Optimized,
		Emissions:  cmp,
		Cached:     cached,
	}

	if save && e.db != nil {
		id, err := e.db.RecordRun(ctx, storage.RunInput{
			SourceName:         name,
			Source:             source,
			Optimized:          a.Optimized,
			Issues:             a.Issues,
			OriginalEmissions:  cmp.Original.Emissions,
			OptimizedEmissions: cmp.Optimized.Emissions,
			Reduction:          cmp.Reduction,
		})
		if err != nil {
			return nil, ecoerrors.NewEcoError(ecoerrors.StorageError, "failed to record analysis run", err)
		}
		outcome.RunID = id
	}

	outcome.DurationMs = time.Since(start).Milliseconds()
	e.logger.Info("Analyzed source",
		"name", name,
		"issues", len(outcome.Issues),
		"reduction", cmp.Reduction,
		"runId", outcome.RunID,
		"cached", cached,
		"durationMs", outcome.DurationMs,
	)
	return outcome, nil
}

// Measure scores source on its own.
func (e *Engine) Measure(ctx context.Context, source string, optimized bool) (*emissions.Breakdown, error) {
	return emissions.NewScorer().Measure(ctx, source, optimized)
}

// Compare scores two texts side by side.
func (e *Engine) Compare(ctx context.Context, original, optimized string) (*emissions.Comparison, error) {
	return emissions.NewScorer().Compare(ctx, original, optimized)
}

// Complexity measures every function in source.
func (e *Engine) Complexity(ctx context.Context, source string) (*complexity.FileComplexity, error) {
	return complexity.NewAnalyzer().Analyze(ctx, source)
}

// CacheStats reports the analysis cache size, or nil when the cache is off.
// Expired entries are pruned first.
func (e *Engine) CacheStats(ctx context.Context) (*storage.CacheStats, error) {
	if !e.cache.Enabled() {
		return nil, nil
	}
	if _, err := e.cache.CleanupExpired(ctx); err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.StorageError, "failed to prune analysis cache", err)
	}
	stats, err := e.cache.Stats(ctx)
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.StorageError, "failed to read analysis cache", err)
	}
	return stats, nil
}

func (e *Engine) requireHistory() error {
	if e.db == nil {
		return ecoerrors.NewEcoError(ecoerrors.StorageError, "run history is disabled", nil)
	}
	return nil
}

// History lists recorded runs, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]storage.Run, error) {
	if err := e.requireHistory(); err != nil {
		return nil, err
	}
	runs, err := e.db.ListRuns(ctx, limit)
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.StorageError, "failed to list runs", err)
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	return runs, nil
}

// GetRun loads one recorded run.
func (e *Engine) GetRun(ctx context.Context, id string) (*storage.RunDetail, error) {
	if err := e.requireHistory(); err != nil {
		return nil, err
	}
	detail, err := e.db.GetRun(ctx, id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return nil, ecoerrors.NewEcoError(ecoerrors.FileNotFound, "no run with id "+id, err)
	}
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.StorageError, "failed to load run", err)
	}
	return detail, nil
}
