//go:build !cgo

package complexity

import (
	"context"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/pyparse"
)

// Analyzer computes complexity metrics.
// This is a stub implementation for non-CGO builds.
type Analyzer struct{}

// NewAnalyzer returns nil when CGO is disabled.
func NewAnalyzer() *Analyzer {
	return nil
}

// IsAvailable reports whether complexity analysis is compiled in.
func IsAvailable() bool {
	return false
}

// Analyze always fails without CGO.
func (a *Analyzer) Analyze(ctx context.Context, source string) (*FileComplexity, error) {
	return nil, ecoerrors.NewEcoError(ecoerrors.InternalError, "complexity analysis unavailable", pyparse.ErrNoCGO)
}
