//go:build cgo

package smells

import (
	"context"
	"log/slog"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/pyparse"
	"ecoscan/internal/slogutil"
)

// Analyzer detects patterns in Python source and rewrites them. An Analyzer
// reuses one parser and must not be shared across goroutines.
type Analyzer struct {
	parser *pyparse.Parser
	logger *slog.Logger
}

// IsAvailable reports whether analysis is compiled in.
func IsAvailable() bool {
	return true
}

// NewAnalyzer creates an analyzer. A nil logger discards output.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Analyzer{
		parser: pyparse.NewParser(),
		logger: logger,
	}
}

// Analyze parses source, detects every catalogued pattern, and returns the
// issues together with the rewritten text. Source that does not parse fails
// with a PARSE_ERROR and produces no partial result.
func (a *Analyzer) Analyze(ctx context.Context, source string) (*Result, error) {
	tree, err := a.parser.Parse(ctx, []byte(source))
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.ParseError, "failed to parse source", err)
	}
	defer tree.Close()

	st := newState()
	d := &detector{tree: tree, st: st}
	d.walk(tree.Root)
	st.sweepUnused()

	result := &Result{
		Issues:    st.sortedIssues(),
		Optimized: ApplyEdits(source, st.edits),
	}

	a.logger.Debug("Analyzed source",
		"issues", len(result.Issues),
		"edits", len(st.edits),
	)
	return result, nil
}

// Analyze runs a fresh Analyzer over source.
func Analyze(ctx context.Context, source string) (*Result, error) {
	return NewAnalyzer(nil).Analyze(ctx, source)
}
