// Package emissions assigns Python source a synthetic emission score from
// static structural counts. The score is only meaningful for comparing two
// versions of the same file.
package emissions

import (
	"math"
	"strings"
)

const (
	loopWeight    = 2.5
	binOpWeight   = 1.0
	literalWeight = 1.5
	callWeight    = 1.2

	baseFactor        = 0.0001
	optimizedDiscount = 0.6
)

// Counts holds the structural metrics of one source unit.
type Counts struct {
	Loops    int `json:"loops"`
	BinOps   int `json:"binOps"`
	Literals int `json:"listLiterals"`
	Calls    int `json:"calls"`
}

// Complexity is the weighted sum of the counts.
func (c Counts) Complexity() float64 {
	return float64(c.Loops)*loopWeight +
		float64(c.BinOps)*binOpWeight +
		float64(c.Literals)*literalWeight +
		float64(c.Calls)*callWeight
}

// Factor grows exponentially with complexity. Optimized text is discounted
// unconditionally.
func Factor(complexity float64, optimized bool) float64 {
	f := baseFactor * math.Exp(complexity/100)
	if optimized {
		f *= optimizedDiscount
	}
	return f
}

// EstimateCounts combines a line count with the structural counts.
func EstimateCounts(lines int, c Counts, optimized bool) float64 {
	complexity := c.Complexity()
	return float64(lines) * Factor(complexity, optimized) * (1 + complexity/1000)
}

// Reduction returns the percentage drop from original to optimized, or 0
// when original is not positive.
func Reduction(original, optimized float64) float64 {
	if original <= 0 {
		return 0
	}
	return (original - optimized) / original * 100
}

// CountLines counts lines the way a line splitter would: a trailing newline
// does not start another line.
func CountLines(source string) int {
	if source == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(source, "\n"), "\n") + 1
}

// Breakdown explains one estimate.
type Breakdown struct {
	Counts
	Lines      int     `json:"lines"`
	Complexity float64 `json:"complexity"`
	Factor     float64 `json:"factor"`
	Optimized  bool    `json:"optimized"`
	Emissions  float64 `json:"emissions"`
}

// NewBreakdown computes the estimate for lines and counts.
func NewBreakdown(lines int, c Counts, optimized bool) *Breakdown {
	complexity := c.Complexity()
	return &Breakdown{
		Counts:     c,
		Lines:      lines,
		Complexity: complexity,
		Factor:     Factor(complexity, optimized),
		Optimized:  optimized,
		Emissions:  EstimateCounts(lines, c, optimized),
	}
}

// Comparison scores an original and an optimized text side by side.
type Comparison struct {
	Original  *Breakdown `json:"original"`
	Optimized *Breakdown `json:"optimized"`
	Reduction float64    `json:"reductionPercent"`
}

// NewComparison builds a Comparison from two breakdowns.
func NewComparison(original, optimized *Breakdown) *Comparison {
	return &Comparison{
		Original:  original,
		Optimized: optimized,
		Reduction: Reduction(original.Emissions, optimized.Emissions),
	}
}
