// Package smells detects inefficient Python constructs and rewrites each
// occurrence into an idiomatic equivalent.
package smells

import "fmt"

// PatternKind identifies one entry of the pattern catalogue.
type PatternKind string

const (
	KindNestedLoopAppend PatternKind = "nested_loop_append"
	KindRangeLen         PatternKind = "range_len"
	KindListCopy         PatternKind = "list_copy"
	KindStringConcat     PatternKind = "string_concat"
	KindIfElifChain      PatternKind = "if_elif_chain"
	KindRepeatedAppend   PatternKind = "repeated_append"
	KindRedundantSort    PatternKind = "redundant_sort"
	KindUnusedVariable   PatternKind = "unused_variable"
)

// Trigger thresholds.
const (
	concatThreshold    = 3
	appendThreshold    = 3
	elifChainThreshold = 4
)

// Issue is one detected pattern occurrence.
type Issue struct {
	Line           int         `json:"line" yaml:"line"`
	Kind           PatternKind `json:"kind" yaml:"kind"`
	Message        string      `json:"issue" yaml:"issue"`
	Recommendation string      `json:"recommendation" yaml:"recommendation"`
	Suggestion     string      `json:"optimization" yaml:"optimization"`
}

// Edit replaces the inclusive 1-based line range [StartLine, EndLine] of
// the original text with Replacement.
type Edit struct {
	StartLine   int    `json:"startLine"`
	EndLine     int    `json:"endLine"`
	Replacement string `json:"replacement"`
}

// Result is the outcome of analysing one source unit.
type Result struct {
	Issues    []Issue `json:"issues"`
	Optimized string  `json:"optimizedCode"`
}

// Count returns how many issues of each kind were found.
func (r *Result) Count() map[PatternKind]int {
	counts := make(map[PatternKind]int)
	for _, issue := range r.Issues {
		counts[issue.Kind]++
	}
	return counts
}

var catalogue = map[PatternKind][2]string{
	KindNestedLoopAppend: {"Nested loops with conditional append", "Use list comprehension"},
	KindRangeLen:         {"range(len()) antipattern", "Use enumerate() or direct iteration"},
	KindListCopy:         {"Inefficient list copy", "Use list.copy() method"},
	KindStringConcat:     {"Multiple string concatenations", "Use str.join()"},
	KindIfElifChain:      {"Long if-elif chain", "Use dictionary mapping"},
	KindRepeatedAppend:   {"Multiple list append operations", "Use list.extend()"},
	KindRedundantSort:    {"Redundant sort operation", "Use single sort with reverse=True"},
	KindUnusedVariable:   {"Unused variable", "Remove unused variable '%s'"},
}

// Kinds returns the catalogue in reporting order.
func Kinds() []PatternKind {
	return []PatternKind{
		KindNestedLoopAppend, KindRangeLen, KindListCopy, KindStringConcat,
		KindIfElifChain, KindRepeatedAppend, KindRedundantSort, KindUnusedVariable,
	}
}

func newIssue(kind PatternKind, line int, suggestion string) Issue {
	text := catalogue[kind]
	return Issue{
		Line:           line,
		Kind:           kind,
		Message:        text[0],
		Recommendation: text[1],
		Suggestion:     suggestion,
	}
}

func unusedIssue(name string, line int) Issue {
	issue := newIssue(KindUnusedVariable, line, fmt.Sprintf("# Remove declaration of '%s'", name))
	issue.Recommendation = fmt.Sprintf(issue.Recommendation, name)
	return issue
}
