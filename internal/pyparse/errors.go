package pyparse

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every SyntaxError via errors.Is.
var ErrSyntax = errors.New("invalid python syntax")

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = errors.New("python parsing requires CGO (tree-sitter)")

// SyntaxError reports the first position tree-sitter could not parse.
type SyntaxError struct {
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid python syntax at line %d, column %d", e.Line, e.Column)
}

// Is lets errors.Is(err, ErrSyntax) match any SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
