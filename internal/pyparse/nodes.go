//go:build cgo

package pyparse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// StartLine returns the 1-based line n starts on.
func StartLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// EndLine returns the 1-based line holding the last character of n. Block
// nodes can end at column 0 of the following line, which is not part of the
// node's text.
func EndLine(n *sitter.Node) int {
	end := n.EndPoint()
	if end.Column == 0 && end.Row > n.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

// SameNode reports whether a and b denote the same syntax node.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// IsField reports whether child is the parent's child for the named field.
func IsField(parent *sitter.Node, field string, child *sitter.Node) bool {
	return SameNode(parent.ChildByFieldName(field), child)
}

// Statements returns the statements of a block, skipping comments.
func Statements(block *sitter.Node) []*sitter.Node {
	if block == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// Body returns the statements in the body of a loop or function.
func Body(n *sitter.Node) []*sitter.Node {
	return Statements(n.ChildByFieldName("body"))
}

// Args returns the positional arguments of a call. Keyword arguments and
// **kwargs are excluded; a bare generator argument counts as one.
func Args(call *sitter.Node) []*sitter.Node {
	list := call.ChildByFieldName("arguments")
	if list == nil {
		return nil
	}
	if list.Type() != "argument_list" {
		return []*sitter.Node{list}
	}
	var args []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		arg := list.NamedChild(i)
		switch arg.Type() {
		case "keyword_argument", "dictionary_splat", "comment":
			continue
		}
		args = append(args, arg)
	}
	return args
}

// CalleeName returns the called name when the callee is a bare identifier.
func CalleeName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return ""
	}
	return fn.Content(src)
}

// MethodCall splits a call of the form recv.method(...) into its receiver
// and method name. ok is false for any other callee shape.
func MethodCall(call *sitter.Node, src []byte) (recv *sitter.Node, method string, ok bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return nil, "", false
	}
	attr := fn.ChildByFieldName("attribute")
	obj := fn.ChildByFieldName("object")
	if attr == nil || obj == nil {
		return nil, "", false
	}
	return obj, attr.Content(src), true
}

// IsRead reports whether an identifier is evaluated rather than bound.
func IsRead(ident *sitter.Node) bool {
	if prev := ident.PrevSibling(); prev != nil && prev.Type() == "as" {
		return false
	}
	parent := ident.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		return !IsField(parent, "left", ident)
	case "named_expression", "keyword_argument", "function_definition", "class_definition",
		"default_parameter", "typed_default_parameter":
		return !IsField(parent, "name", ident)
	case "attribute":
		return !IsField(parent, "attribute", ident)
	case "as_pattern":
		return !IsField(parent, "alias", ident)
	case "parameters", "lambda_parameters", "typed_parameter", "list_splat_pattern",
		"dictionary_splat_pattern", "pattern_list", "tuple_pattern", "list_pattern",
		"as_pattern_target", "dotted_name", "aliased_import", "global_statement",
		"nonlocal_statement", "delete_statement":
		return false
	}
	return true
}

// Walk visits n and its descendants in pre-order.
func Walk(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), fn)
	}
}

// BreadthFirst visits n and its descendants level by level until fn
// returns false.
func BreadthFirst(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	queue := []*sitter.Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		for i := 0; i < int(cur.ChildCount()); i++ {
			if child := cur.Child(i); child != nil {
				queue = append(queue, child)
			}
		}
	}
}

// Count returns how many nodes under root (inclusive) have one of types.
func Count(root *sitter.Node, types ...string) int {
	count := 0
	Walk(root, func(n *sitter.Node) {
		if contains(types, n.Type()) {
			count++
		}
	})
	return count
}

// Dedent returns the text of n with continuation lines stripped of the
// indentation n starts at.
func Dedent(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	col := int(n.StartPoint().Column)
	if col == 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = trimIndent(lines[i], col)
	}
	return strings.Join(lines, "\n")
}

func trimIndent(line string, width int) string {
	i := 0
	for i < width && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
