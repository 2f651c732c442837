//go:build !cgo

package pyparse

import "context"

// Parser wraps tree-sitter parsing functionality.
// This is a stub implementation for non-CGO builds.
type Parser struct{}

// Tree is a parsed source unit. Never produced without CGO.
type Tree struct {
	Source []byte
}

// IsAvailable reports whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return false
}

// NewParser returns nil when CGO is disabled.
func NewParser() *Parser {
	return nil
}

// Parse always fails with ErrNoCGO.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	return nil, ErrNoCGO
}

// ParseRecovered always fails with ErrNoCGO.
func (p *Parser) ParseRecovered(ctx context.Context, source []byte) (*Tree, error) {
	return nil, ErrNoCGO
}

// Close is a no-op.
func (t *Tree) Close() {}
