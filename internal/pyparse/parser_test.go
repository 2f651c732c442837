//go:build cgo

package pyparse

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := NewParser().Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree
}

func first(root *sitter.Node, nodeType string) *sitter.Node {
	var found *sitter.Node
	BreadthFirst(root, func(n *sitter.Node) bool {
		if n.Type() == nodeType {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestParseSyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("def broken(:\n    pass\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}
	var se *SyntaxError
	if !errors.As(err, &se) || se.Line != 1 {
		t.Errorf("expected syntax error on line 1, got %v", err)
	}
}

func TestParseRecovered(t *testing.T) {
	src := "d = {x == 1: y = 1}\nfor i in items:\n    print(i)\n"

	if _, err := NewParser().Parse(context.Background(), []byte(src)); !errors.Is(err, ErrSyntax) {
		t.Fatalf("Parse: expected ErrSyntax, got %v", err)
	}

	tree, err := NewParser().ParseRecovered(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("ParseRecovered failed: %v", err)
	}
	defer tree.Close()

	if !tree.Root.HasError() {
		t.Error("expected ERROR nodes in the recovered tree")
	}
	if n := Count(tree.Root, "call"); n < 1 {
		t.Errorf("expected the print call to survive recovery, got %d calls", n)
	}
}

func TestStartEndLine(t *testing.T) {
	tree := parse(t, "x = 1\nfor a in b:\n    print(a)\n    print(b)\ny = 2\n")
	loop := first(tree.Root, "for_statement")
	if loop == nil {
		t.Fatal("no for_statement")
	}
	if got := StartLine(loop); got != 2 {
		t.Errorf("StartLine: expected 2, got %d", got)
	}
	if got := EndLine(loop); got != 4 {
		t.Errorf("EndLine: expected 4, got %d", got)
	}
}

func TestStatementsSkipsComments(t *testing.T) {
	tree := parse(t, "for a in b:\n    # note\n    print(a)\n")
	loop := first(tree.Root, "for_statement")
	stmts := Body(loop)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if got := tree.Text(stmts[0]); got != "print(a)" {
		t.Errorf("expected print(a), got %q", got)
	}
}

func TestArgsAndCallee(t *testing.T) {
	tree := parse(t, "sorted(data, key=f, *rest, **kw)\n")
	call := first(tree.Root, "call")
	if got := CalleeName(call, tree.Source); got != "sorted" {
		t.Errorf("CalleeName: expected sorted, got %q", got)
	}
	args := Args(call)
	if len(args) != 2 {
		t.Fatalf("expected 2 positional args, got %d", len(args))
	}
	if got := tree.Text(args[0]); got != "data" {
		t.Errorf("expected data, got %q", got)
	}
}

func TestMethodCall(t *testing.T) {
	tree := parse(t, "out.append(1)\n")
	call := first(tree.Root, "call")
	recv, method, ok := MethodCall(call, tree.Source)
	if !ok {
		t.Fatal("expected a method call")
	}
	if tree.Text(recv) != "out" || method != "append" {
		t.Errorf("expected out.append, got %s.%s", tree.Text(recv), method)
	}
}

func TestIsRead(t *testing.T) {
	src := "def f(a, b=c):\n    x = y\n    for i in items:\n        obj.attr = i\n    return x\n"
	tree := parse(t, src)

	reads := map[string]bool{}
	writes := map[string]bool{}
	Walk(tree.Root, func(n *sitter.Node) {
		if n.Type() != "identifier" {
			return
		}
		if IsRead(n) {
			reads[tree.Text(n)] = true
		} else {
			writes[tree.Text(n)] = true
		}
	})

	for _, name := range []string{"c", "y", "items", "obj", "i", "x"} {
		if !reads[name] {
			t.Errorf("expected %s to be read", name)
		}
	}
	for _, name := range []string{"f", "a", "b", "attr"} {
		if reads[name] {
			t.Errorf("expected %s not to be read", name)
		}
	}
	if !writes["x"] || !writes["i"] {
		t.Error("expected x and i to also appear as bindings")
	}
}

func TestDedent(t *testing.T) {
	tree := parse(t, "def f():\n    if a:\n        b()\n")
	stmt := first(tree.Root, "if_statement")
	if got := Dedent(stmt, tree.Source); got != "if a:\n    b()" {
		t.Errorf("unexpected dedent result %q", got)
	}
}

func TestCount(t *testing.T) {
	tree := parse(t, "for a in b:\n    while c:\n        f(a + 1)\n")
	if got := Count(tree.Root, "for_statement", "while_statement"); got != 2 {
		t.Errorf("expected 2 loops, got %d", got)
	}
	if got := Count(tree.Root, "call"); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}
