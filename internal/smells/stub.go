//go:build !cgo

package smells

import (
	"context"
	"log/slog"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/pyparse"
)

// Analyzer detects patterns in Python source.
// This is a stub implementation for non-CGO builds.
type Analyzer struct{}

// IsAvailable reports whether analysis is compiled in.
func IsAvailable() bool {
	return false
}

// NewAnalyzer returns an analyzer whose Analyze always fails.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{}
}

// Analyze always fails without CGO.
func (a *Analyzer) Analyze(ctx context.Context, source string) (*Result, error) {
	return nil, ecoerrors.NewEcoError(ecoerrors.InternalError, "analysis unavailable", pyparse.ErrNoCGO)
}

// Analyze always fails without CGO.
func Analyze(ctx context.Context, source string) (*Result, error) {
	return NewAnalyzer(nil).Analyze(ctx, source)
}
