//go:build cgo

package emissions

import (
	"context"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/pyparse"
)

var (
	loopNodeTypes    = []string{"for_statement", "while_statement"}
	binOpNodeTypes   = []string{"binary_operator"}
	literalNodeTypes = []string{"list"}
	callNodeTypes    = []string{"call"}
)

// Scorer parses Python and computes emission estimates. A Scorer must not
// be shared across goroutines.
type Scorer struct {
	parser *pyparse.Parser
}

// NewScorer creates a new Scorer.
func NewScorer() *Scorer {
	return &Scorer{parser: pyparse.NewParser()}
}

// Count returns the structural counts of source.
func (s *Scorer) Count(ctx context.Context, source string) (Counts, error) {
	tree, err := s.parser.Parse(ctx, []byte(source))
	if err != nil {
		return Counts{}, ecoerrors.NewEcoError(ecoerrors.ParseError, "failed to parse source", err)
	}
	defer tree.Close()
	return countTree(tree), nil
}

// CountRecovered counts over tree-sitter's error-recovered tree, so text
// that is not valid Python still gets counts. Rewrites can produce such
// text, e.g. a mapping whose values are assignments.
func (s *Scorer) CountRecovered(ctx context.Context, source string) (Counts, error) {
	tree, err := s.parser.ParseRecovered(ctx, []byte(source))
	if err != nil {
		return Counts{}, ecoerrors.NewEcoError(ecoerrors.InternalError, "failed to parse rewritten source", err)
	}
	defer tree.Close()
	return countTree(tree), nil
}

func countTree(tree *pyparse.Tree) Counts {
	return Counts{
		Loops:    pyparse.Count(tree.Root, loopNodeTypes...),
		BinOps:   pyparse.Count(tree.Root, binOpNodeTypes...),
		Literals: pyparse.Count(tree.Root, literalNodeTypes...),
		Calls:    pyparse.Count(tree.Root, callNodeTypes...),
	}
}

// Score returns the complexity of source.
func (s *Scorer) Score(ctx context.Context, source string) (float64, error) {
	c, err := s.Count(ctx, source)
	if err != nil {
		return 0, err
	}
	return c.Complexity(), nil
}

// Measure returns the full estimate breakdown for source.
func (s *Scorer) Measure(ctx context.Context, source string, optimized bool) (*Breakdown, error) {
	c, err := s.Count(ctx, source)
	if err != nil {
		return nil, err
	}
	return NewBreakdown(CountLines(source), c, optimized), nil
}

// EstimateSource returns the emission estimate for source.
func (s *Scorer) EstimateSource(ctx context.Context, source string, optimized bool) (float64, error) {
	b, err := s.Measure(ctx, source, optimized)
	if err != nil {
		return 0, err
	}
	return b.Emissions, nil
}

// Compare measures original as unoptimized text and rewritten as optimized
// text. Only original must be valid Python; rewritten is counted over the
// recovered tree.
func (s *Scorer) Compare(ctx context.Context, original, rewritten string) (*Comparison, error) {
	before, err := s.Measure(ctx, original, false)
	if err != nil {
		return nil, err
	}
	c, err := s.CountRecovered(ctx, rewritten)
	if err != nil {
		return nil, err
	}
	return NewComparison(before, NewBreakdown(CountLines(rewritten), c, true)), nil
}

// Score returns the complexity of source using a fresh Scorer.
func Score(ctx context.Context, source string) (float64, error) {
	return NewScorer().Score(ctx, source)
}

// Estimate returns the emission estimate of source using a fresh Scorer.
func Estimate(ctx context.Context, source string, optimized bool) (float64, error) {
	return NewScorer().EstimateSource(ctx, source, optimized)
}
