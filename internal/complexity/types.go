// Package complexity computes per-function cyclomatic and cognitive
// complexity for Python source.
package complexity

// FunctionComplexity holds the metrics of one function or method.
type FunctionComplexity struct {
	Name       string `json:"name"`
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	Lines      int    `json:"lines"`
	Cyclomatic int    `json:"cyclomatic"`
	Cognitive  int    `json:"cognitive"`
}

// FileComplexity aggregates the functions of one source unit.
type FileComplexity struct {
	Functions         []FunctionComplexity `json:"functions"`
	FunctionCount     int                  `json:"functionCount"`
	TotalCyclomatic   int                  `json:"totalCyclomatic"`
	MaxCyclomatic     int                  `json:"maxCyclomatic"`
	AverageCyclomatic float64              `json:"averageCyclomatic"`
	TotalCognitive    int                  `json:"totalCognitive"`
	MaxCognitive      int                  `json:"maxCognitive"`
}

// Aggregate fills the file totals from Functions.
func (fc *FileComplexity) Aggregate() {
	fc.FunctionCount = len(fc.Functions)
	fc.TotalCyclomatic, fc.MaxCyclomatic = 0, 0
	fc.TotalCognitive, fc.MaxCognitive = 0, 0
	fc.AverageCyclomatic = 0
	if fc.FunctionCount == 0 {
		return
	}

	for _, f := range fc.Functions {
		fc.TotalCyclomatic += f.Cyclomatic
		fc.TotalCognitive += f.Cognitive
		fc.MaxCyclomatic = max(fc.MaxCyclomatic, f.Cyclomatic)
		fc.MaxCognitive = max(fc.MaxCognitive, f.Cognitive)
	}
	fc.AverageCyclomatic = float64(fc.TotalCyclomatic) / float64(fc.FunctionCount)
}

// Hotspots returns the functions whose cyclomatic complexity is at least
// threshold, in source order.
func (fc *FileComplexity) Hotspots(threshold int) []FunctionComplexity {
	var out []FunctionComplexity
	for _, f := range fc.Functions {
		if f.Cyclomatic >= threshold {
			out = append(out, f)
		}
	}
	return out
}

// Decision points: each adds one path through a function.
var decisionTypes = map[string]bool{
	"if_statement":             true,
	"elif_clause":              true,
	"for_statement":            true,
	"while_statement":          true,
	"except_clause":            true,
	"with_statement":           true,
	"boolean_operator":         true,
	"conditional_expression":   true,
	"list_comprehension":       true,
	"dictionary_comprehension": true,
	"set_comprehension":        true,
	"generator_expression":     true,
	"case_clause":              true,
}

// Constructs that deepen nesting for the cognitive score.
var nestingTypes = map[string]bool{
	"if_statement":             true,
	"for_statement":            true,
	"while_statement":          true,
	"try_statement":            true,
	"with_statement":           true,
	"lambda":                   true,
	"list_comprehension":       true,
	"dictionary_comprehension": true,
	"set_comprehension":        true,
	"generator_expression":     true,
	"match_statement":          true,
}
