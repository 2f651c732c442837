//go:build cgo

package complexity

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/pyparse"
)

// Analyzer computes complexity metrics. It reuses one parser and must not
// be shared across goroutines.
type Analyzer struct {
	parser *pyparse.Parser
}

// NewAnalyzer creates a new complexity analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{parser: pyparse.NewParser()}
}

// IsAvailable reports whether complexity analysis is compiled in.
func IsAvailable() bool {
	return true
}

// Analyze measures every function_definition in source, nested ones and
// methods included. Methods are named Class.method.
func (a *Analyzer) Analyze(ctx context.Context, source string) (*FileComplexity, error) {
	tree, err := a.parser.Parse(ctx, []byte(source))
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.ParseError, "failed to parse source", err)
	}
	defer tree.Close()

	fc := &FileComplexity{Functions: []FunctionComplexity{}}
	collect(tree.Root, tree.Source, "", fc)
	fc.Aggregate()
	return fc, nil
}

// collect walks n, recording functions. prefix is the enclosing class name.
func collect(n *sitter.Node, src []byte, prefix string, fc *FileComplexity) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			fc.Functions = append(fc.Functions, measure(child, src, prefix))
			collect(child, src, "", fc)
		case "class_definition":
			name := prefix + nodeName(child, src)
			collect(child, src, name+".", fc)
		default:
			collect(child, src, prefix, fc)
		}
	}
}

func nodeName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	return "<unknown>"
}

func measure(fn *sitter.Node, src []byte, prefix string) FunctionComplexity {
	start, end := pyparse.StartLine(fn), pyparse.EndLine(fn)
	body := fn.ChildByFieldName("body")
	return FunctionComplexity{
		Name:       prefix + nodeName(fn, src),
		StartLine:  start,
		EndLine:    end,
		Lines:      end - start + 1,
		Cyclomatic: 1 + decisions(body),
		Cognitive:  cognitive(body, 0),
	}
}

// decisions counts decision points under n without descending into nested
// function definitions, which are measured on their own.
func decisions(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	if decisionTypes[n.Type()] {
		count++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || child.Type() == "function_definition" {
			continue
		}
		count += decisions(child)
	}
	return count
}

// cognitive weights each decision point by how deeply it is nested.
func cognitive(n *sitter.Node, depth int) int {
	if n == nil {
		return 0
	}
	score := 0
	if decisionTypes[n.Type()] {
		score += 1 + depth
	}
	if nestingTypes[n.Type()] {
		depth++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || child.Type() == "function_definition" {
			continue
		}
		score += cognitive(child, depth)
	}
	return score
}
