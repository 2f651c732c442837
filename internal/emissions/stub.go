//go:build !cgo

package emissions

import (
	"context"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/pyparse"
)

// Scorer computes emission estimates.
// This is a stub implementation for non-CGO builds.
type Scorer struct{}

// NewScorer creates a new Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

func unavailable() error {
	return ecoerrors.NewEcoError(ecoerrors.InternalError, "emission scoring unavailable", pyparse.ErrNoCGO)
}

// Count always fails without CGO.
func (s *Scorer) Count(ctx context.Context, source string) (Counts, error) {
	return Counts{}, unavailable()
}

// CountRecovered always fails without CGO.
func (s *Scorer) CountRecovered(ctx context.Context, source string) (Counts, error) {
	return Counts{}, unavailable()
}

// Score always fails without CGO.
func (s *Scorer) Score(ctx context.Context, source string) (float64, error) {
	return 0, unavailable()
}

// Measure always fails without CGO.
func (s *Scorer) Measure(ctx context.Context, source string, optimized bool) (*Breakdown, error) {
	return nil, unavailable()
}

// EstimateSource always fails without CGO.
func (s *Scorer) EstimateSource(ctx context.Context, source string, optimized bool) (float64, error) {
	return 0, unavailable()
}

// Compare always fails without CGO.
func (s *Scorer) Compare(ctx context.Context, original, rewritten string) (*Comparison, error) {
	return nil, unavailable()
}

// Score always fails without CGO.
func Score(ctx context.Context, source string) (float64, error) {
	return 0, unavailable()
}

// Estimate always fails without CGO.
func Estimate(ctx context.Context, source string, optimized bool) (float64, error) {
	return 0, unavailable()
}
