//go:build cgo

package labelling

import (
	"context"
	"errors"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"ecoscan/internal/pyparse"
	"ecoscan/internal/slogutil"
)

// Labeller counts smells in Python files. A Labeller must not be shared
// across goroutines.
type Labeller struct {
	parser       *pyparse.Parser
	longFunction int
	logger       *slog.Logger
}

// NewLabeller creates a labeller. A threshold <= 0 uses DefaultLongFunction.
func NewLabeller(longFunction int, logger *slog.Logger) *Labeller {
	if longFunction <= 0 {
		longFunction = DefaultLongFunction
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Labeller{
		parser:       pyparse.NewParser(),
		longFunction: longFunction,
		logger:       logger,
	}
}

// Label counts the smells of source. Source that does not parse is skipped
// with zero counts.
func (l *Labeller) Label(ctx context.Context, source []byte) (Smells, error) {
	tree, err := l.parser.Parse(ctx, source)
	if err != nil {
		if errors.Is(err, pyparse.ErrSyntax) {
			l.logger.Debug("Skipping unparsable sample", "error", err.Error())
			return Smells{}, nil
		}
		return Smells{}, err
	}
	defer tree.Close()

	var s Smells
	countNestedLoops(tree.Root, 0, &s)

	names := make(map[string]bool)
	functions := 0
	for _, stmt := range pyparse.Statements(tree.Root) {
		fn := stmt
		if fn.Type() == "decorated_definition" {
			fn = fn.ChildByFieldName("definition")
		}
		if fn == nil || fn.Type() != "function_definition" || isAsync(fn) {
			continue
		}
		functions++
		names[tree.Text(fn.ChildByFieldName("name"))] = true
		if len(pyparse.Body(fn)) > l.longFunction {
			s.InefficientAlgorithms++
		}
	}
	s.RepetitiveCode = functions - len(names)

	pyparse.Walk(tree.Root, func(n *sitter.Node) {
		if n.Type() != "return_statement" || n.NamedChildCount() != 1 {
			return
		}
		if n.NamedChild(0).Type() == "none" {
			s.RedundantComputations++
		}
	})

	return s, nil
}

// countNestedLoops counts loops that sit inside another loop. async for
// loops are neither counted nor nest.
func countNestedLoops(n *sitter.Node, depth int, s *Smells) {
	switch n.Type() {
	case "for_statement", "while_statement":
		if isAsync(n) {
			break
		}
		if depth > 0 {
			s.NestedLoops++
		}
		depth++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		countNestedLoops(n.Child(i), depth, s)
	}
}

// isAsync reports whether a def or for statement carries the async keyword.
func isAsync(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "async" {
			return true
		}
		if child.IsNamed() {
			return false
		}
	}
	return false
}
