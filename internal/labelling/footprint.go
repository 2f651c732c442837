// Package labelling counts coarse code smells in dataset samples and derives
// a CPU cycle and carbon footprint estimate from them.
package labelling

// DefaultLongFunction is the body length above which a top-level function
// counts as an inefficient algorithm.
const DefaultLongFunction = 15

const (
	nestedLoopCycles   = 1000
	longFunctionCycles = 500
	joulesPerCycle     = 1e-9
	joulesPerKWh       = 3.6e6
	kgCO2PerKWh        = 0.475
)

// Smells holds the per-file smell counts.
type Smells struct {
	NestedLoops           int `json:"nested_loops"`
	RepetitiveCode        int `json:"repetitive_code"`
	InefficientAlgorithms int `json:"inefficient_algorithms"`
	RedundantComputations int `json:"redundant_computations"`
}

// CPUCycles estimates the extra cycles a file's smells cost.
func CPUCycles(s Smells) int64 {
	return int64(s.NestedLoops)*nestedLoopCycles + int64(s.InefficientAlgorithms)*longFunctionCycles
}

// CarbonFootprint converts cycles to kilograms of CO2.
func CarbonFootprint(cycles int64) float64 {
	kwh := float64(cycles) * joulesPerCycle / joulesPerKWh
	return kwh * kgCO2PerKWh
}
