package emissions

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestComplexity(t *testing.T) {
	c := Counts{Loops: 2, BinOps: 3, Literals: 1, Calls: 5}
	want := 2*2.5 + 3*1.0 + 1*1.5 + 5*1.2
	if got := c.Complexity(); !approx(got, want) {
		t.Errorf("Complexity() = %v, want %v", got, want)
	}
}

func TestFactor(t *testing.T) {
	if got := Factor(0, false); !approx(got, 0.0001) {
		t.Errorf("Factor(0) = %v, want 0.0001", got)
	}
	if got := Factor(100, false); !approx(got, 0.0001*math.E) {
		t.Errorf("Factor(100) = %v, want %v", got, 0.0001*math.E)
	}
	if got := Factor(100, true); !approx(got, 0.0001*math.E*0.6) {
		t.Errorf("Factor(100, optimized) = %v, want %v", got, 0.0001*math.E*0.6)
	}
}

func TestEstimate(t *testing.T) {
	c := Counts{Loops: 4}
	want := 10 * 0.0001 * math.Exp(0.1) * 1.01
	if got := EstimateCounts(10, c, false); !approx(got, want) {
		t.Errorf("EstimateCounts() = %v, want %v", got, want)
	}
}

func TestEstimateOptimizedAlwaysLower(t *testing.T) {
	for _, c := range []Counts{{}, {Loops: 1}, {BinOps: 40, Calls: 12}, {Loops: 30, Literals: 9}} {
		for _, lines := range []int{1, 7, 250} {
			original := EstimateCounts(lines, c, false)
			optimized := EstimateCounts(lines, c, true)
			if !(optimized < original) {
				t.Errorf("lines=%d counts=%+v: optimized %v not below %v", lines, c, optimized, original)
			}
		}
	}
}

func TestReduction(t *testing.T) {
	tests := []struct {
		name                string
		original, optimized float64
		want                float64
	}{
		{"zero original", 0, 5, 0},
		{"negative original", -1, -3, 0},
		{"forty percent", 10, 6, 40},
		{"increase", 2, 3, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduction(tt.original, tt.optimized); !approx(got, tt.want) {
				t.Errorf("Reduction(%v, %v) = %v, want %v", tt.original, tt.optimized, got, tt.want)
			}
		})
	}
}

func TestCountLines(t *testing.T) {
	tests := map[string]int{
		"":           0,
		"a":          1,
		"a\n":        1,
		"a\nb":       2,
		"a\n\nb\n":   3,
		"a\r\nb\r\n": 2,
	}
	for src, want := range tests {
		if got := CountLines(src); got != want {
			t.Errorf("CountLines(%q) = %d, want %d", src, got, want)
		}
	}
}

func TestNewComparison(t *testing.T) {
	c := Counts{Calls: 3}
	cmp := NewComparison(NewBreakdown(5, c, false), NewBreakdown(5, c, true))
	if !approx(cmp.Reduction, 40) {
		t.Errorf("expected 40%% reduction for identical text, got %v", cmp.Reduction)
	}
	if !cmp.Optimized.Optimized || cmp.Original.Optimized {
		t.Error("optimized flags not carried into breakdowns")
	}
}
