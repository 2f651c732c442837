//go:build !cgo

package labelling

import (
	"context"
	"log/slog"

	"ecoscan/internal/pyparse"
)

// Labeller counts smells in Python files.
// This is a stub implementation for non-CGO builds.
type Labeller struct{}

// NewLabeller creates a labeller whose Label always fails.
func NewLabeller(longFunction int, logger *slog.Logger) *Labeller {
	return &Labeller{}
}

// Label always fails without CGO.
func (l *Labeller) Label(ctx context.Context, source []byte) (Smells, error) {
	return Smells{}, pyparse.ErrNoCGO
}
