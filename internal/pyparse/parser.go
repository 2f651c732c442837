//go:build cgo

// Package pyparse wraps tree-sitter's Python grammar and the node helpers
// shared by the analysers.
package pyparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps tree-sitter for Python parsing. A Parser is not safe for
// concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// Tree is a parsed source unit.
type Tree struct {
	Root   *sitter.Node
	Source []byte

	tree *sitter.Tree
}

// IsAvailable reports whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return true
}

// NewParser creates a new tree-sitter parser for Python.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source and fails with a *SyntaxError if tree-sitter had to
// recover from any error.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	tree, err := p.ParseRecovered(ctx, source)
	if err != nil {
		return nil, err
	}
	if tree.Root.HasError() {
		line, col := firstError(tree.Root)
		tree.Close()
		return nil, &SyntaxError{Line: line, Column: col}
	}
	return tree, nil
}

// ParseRecovered parses source and keeps tree-sitter's error-recovered tree
// when source is not valid Python. ERROR nodes stay in the tree.
func (p *Parser) ParseRecovered(ctx context.Context, source []byte) (*Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return &Tree{Root: tree.RootNode(), Source: source, tree: tree}, nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
	}
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.Source)
}

func firstError(n *sitter.Node) (int, int) {
	if n.IsError() || n.IsMissing() {
		p := n.StartPoint()
		return int(p.Row) + 1, int(p.Column) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return firstError(child)
		}
	}
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}
