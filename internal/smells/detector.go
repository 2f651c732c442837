//go:build cgo

package smells

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"ecoscan/internal/pyparse"
)

// detector walks one parsed unit and feeds the pattern state.
type detector struct {
	tree *pyparse.Tree
	st   *state
}

func (d *detector) text(n *sitter.Node) string {
	return d.tree.Text(n)
}

// walk visits every node in pre-order. Each node's own check runs before
// its children are visited.
func (d *detector) walk(n *sitter.Node) {
	pyparse.Walk(n, d.visit)
}

func (d *detector) visit(n *sitter.Node) {
	switch n.Type() {
	case "for_statement":
		d.visitFor(n)
	case "assignment":
		d.visitAssign(n)
	case "augmented_assignment":
		d.visitAugAssign(n)
	case "if_statement":
		d.visitIf(n, n)
	case "elif_clause":
		d.visitIf(n, n.Parent())
	case "call":
		d.visitCall(n)
	case "identifier":
		if pyparse.IsRead(n) {
			d.st.markRead(d.text(n))
		}
	}
}

func (d *detector) visitFor(n *sitter.Node) {
	if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
		d.st.bindLoopTarget(d.text(left))
	}
	d.checkNestedAppend(n)
	d.checkRangeLen(n)
}

// checkNestedAppend matches
//
//	for a in xs:
//	    for b in ys:
//	        if cond:
//	            out.append(v)
func (d *detector) checkNestedAppend(outer *sitter.Node) {
	body := pyparse.Body(outer)
	if len(body) == 0 || body[0].Type() != "for_statement" {
		return
	}
	inner := body[0]
	innerBody := pyparse.Body(inner)
	if len(innerBody) != 1 || innerBody[0].Type() != "if_statement" {
		return
	}
	cond := innerBody[0]
	then := pyparse.Statements(cond.ChildByFieldName("consequence"))
	if len(then) != 1 {
		return
	}
	call := expressionCall(then[0])
	if call == nil {
		return
	}
	recv, method, ok := pyparse.MethodCall(call, d.tree.Source)
	if !ok || method != "append" {
		return
	}

	line := pyparse.StartLine(outer)
	args := pyparse.Args(call)
	if len(args) == 0 {
		d.st.report(newIssue(KindNestedLoopAppend, line, ""))
		return
	}

	// The comprehension is bound to the append receiver.
	replacement := fmt.Sprintf("%s = [%s for %s in %s for %s in %s if %s]",
		d.text(recv), d.text(args[0]),
		d.text(outer.ChildByFieldName("left")), d.text(outer.ChildByFieldName("right")),
		d.text(inner.ChildByFieldName("left")), d.text(inner.ChildByFieldName("right")),
		d.text(cond.ChildByFieldName("condition")))

	d.st.report(newIssue(KindNestedLoopAppend, line, replacement))
	d.st.register(line, Edit{StartLine: line - 1, EndLine: pyparse.EndLine(outer), Replacement: replacement})
}

func (d *detector) checkRangeLen(loop *sitter.Node) {
	iter := loop.ChildByFieldName("right")
	if iter == nil || iter.Type() != "call" || pyparse.CalleeName(iter, d.tree.Source) != "range" {
		return
	}
	rangeArgs := pyparse.Args(iter)
	if len(rangeArgs) != 1 || rangeArgs[0].Type() != "call" || pyparse.CalleeName(rangeArgs[0], d.tree.Source) != "len" {
		return
	}
	lenArgs := pyparse.Args(rangeArgs[0])
	if len(lenArgs) != 1 {
		return
	}

	line := pyparse.StartLine(loop)
	iterable := d.text(lenArgs[0])
	target := d.text(loop.ChildByFieldName("left"))

	stmts := pyparse.Body(loop)
	texts := make([]string, 0, len(stmts))
	usesIndex := false
	for _, stmt := range stmts {
		t := pyparse.Dedent(stmt, d.tree.Source)
		if strings.Contains(t, target) {
			usesIndex = true
		}
		texts = append(texts, t)
	}
	body := indentBlock(strings.Join(texts, "\n"))

	var replacement string
	if usesIndex {
		replacement = fmt.Sprintf("for i, %s in enumerate(%s):\n%s", target, iterable, body)
	} else {
		replacement = fmt.Sprintf("for %s in %s:\n%s", target, iterable, body)
	}

	d.st.report(newIssue(KindRangeLen, line, replacement))
	d.st.register(line, Edit{StartLine: line, EndLine: pyparse.EndLine(loop), Replacement: replacement})
}

func (d *detector) visitAssign(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil || n.ChildByFieldName("type") != nil {
		return
	}
	line := pyparse.StartLine(n)
	target := d.text(left)

	if left.Type() == "identifier" {
		d.st.declare(target, line)
	}

	switch right.Type() {
	case "binary_operator":
		if op := right.ChildByFieldName("operator"); op != nil && op.Type() == "+" {
			d.st.addConcat(target, chainLink{line: line})
		}
	case "call":
		if pyparse.CalleeName(right, d.tree.Source) != "list" {
			return
		}
		args := pyparse.Args(right)
		if len(args) != 1 {
			return
		}
		replacement := fmt.Sprintf("%s = %s.copy()", target, d.text(args[0]))
		d.st.report(newIssue(KindListCopy, line, replacement))
		d.st.register(line, Edit{StartLine: line, EndLine: line, Replacement: replacement})
	}
}

func (d *detector) visitAugAssign(n *sitter.Node) {
	op := n.ChildByFieldName("operator")
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if op == nil || op.Type() != "+=" || left == nil || right == nil {
		return
	}

	target := d.text(left)
	chain := d.st.addConcat(target, chainLink{line: pyparse.StartLine(n), piece: d.text(right), aug: true})
	if len(chain) < concatThreshold {
		return
	}

	start, end := lineSpan(chain, func(l chainLink) int { return l.line })
	var pieces []string
	if init := d.initialValue(target); init != "" {
		pieces = append(pieces, init)
	}
	for _, link := range chain {
		if link.aug {
			pieces = append(pieces, link.piece)
		}
	}

	replacement := fmt.Sprintf(`%s = "".join([%s])`, target, strings.Join(pieces, ", "))
	d.st.report(newIssue(KindStringConcat, start, replacement))
	d.st.register(start, Edit{StartLine: start, EndLine: end, Replacement: replacement})
}

// initialValue returns the right-hand side of the first plain assignment to
// target found by a breadth-first scan of the whole unit.
func (d *detector) initialValue(target string) string {
	var value string
	pyparse.BreadthFirst(d.tree.Root, func(n *sitter.Node) bool {
		if n.Type() != "assignment" || n.ChildByFieldName("type") != nil {
			return true
		}
		if d.text(n.ChildByFieldName("left")) != target {
			return true
		}
		if right := n.ChildByFieldName("right"); right != nil {
			value = d.text(right)
			return false
		}
		return true
	})
	return value
}

// visitIf checks the chain headed by an if statement or by one of its elif
// clauses. An elif heads the remainder of its statement's chain, so a long
// chain is reported once per head that still meets the threshold.
func (d *detector) visitIf(head, stmt *sitter.Node) {
	if stmt == nil {
		return
	}
	branches, ok := d.ifChain(head, stmt)
	if !ok || len(branches) < elifChainThreshold {
		return
	}

	cases := make([]string, len(branches))
	for i, b := range branches {
		cases[i] = fmt.Sprintf("    %s: %s", b[0], b[1])
	}
	replacement := "switch_dict = {\n" + strings.Join(cases, ",\n") + "\n}\n" +
		"result = switch_dict.get(True, 'default_value')"

	line := pyparse.StartLine(head)
	d.st.report(newIssue(KindIfElifChain, line, replacement))
	d.st.register(line, Edit{StartLine: line, EndLine: pyparse.EndLine(stmt), Replacement: replacement})
}

// ifChain collects (condition, action) pairs starting at head: the clauses
// of stmt that follow it, then any if nested alone inside stmt's else. ok is
// false as soon as a branch holds more than one statement.
func (d *detector) ifChain(head, stmt *sitter.Node) ([][2]string, bool) {
	var branches [][2]string
	add := func(clause *sitter.Node) bool {
		body := pyparse.Statements(clause.ChildByFieldName("consequence"))
		if len(body) != 1 {
			return false
		}
		action := strings.TrimSpace(pyparse.Dedent(body[0], d.tree.Source))
		branches = append(branches, [2]string{d.text(clause.ChildByFieldName("condition")), action})
		return true
	}

	for head != nil {
		if !add(head) {
			return nil, false
		}
		var next *sitter.Node
		for i := 0; i < int(stmt.NamedChildCount()); i++ {
			child := stmt.NamedChild(i)
			if child.StartByte() <= head.StartByte() {
				continue
			}
			switch child.Type() {
			case "elif_clause":
				if !add(child) {
					return nil, false
				}
			case "else_clause":
				if stmts := pyparse.Body(child); len(stmts) == 1 && stmts[0].Type() == "if_statement" {
					next = stmts[0]
				}
			}
		}
		head, stmt = next, next
	}
	return branches, true
}

func (d *detector) visitCall(n *sitter.Node) {
	if recv, method, ok := pyparse.MethodCall(n, d.tree.Source); ok {
		if method == "append" {
			d.checkAppend(n, d.text(recv))
		}
		return
	}
	if pyparse.CalleeName(n, d.tree.Source) != "sorted" {
		return
	}
	args := pyparse.Args(n)
	if len(args) == 0 {
		return
	}
	arg := d.text(args[0])
	if d.st.sortedBefore(arg) {
		d.st.report(newIssue(KindRedundantSort, pyparse.StartLine(n), arg+".sort(reverse=True)"))
	}
}

func (d *detector) checkAppend(call *sitter.Node, recv string) {
	entry := appendCall{line: pyparse.StartLine(call)}
	if args := pyparse.Args(call); len(args) > 0 {
		entry.value = d.text(args[0])
		entry.ok = true
	}
	run := d.st.addAppend(recv, entry)
	if len(run) < appendThreshold {
		return
	}

	start, end := run[0].line, run[len(run)-1].line
	values := make([]string, 0, len(run))
	complete := true
	for _, c := range run {
		if !c.ok {
			complete = false
			break
		}
		values = append(values, c.value)
	}
	if !complete {
		d.st.report(newIssue(KindRepeatedAppend, start, ""))
		return
	}

	replacement := fmt.Sprintf("%s.extend([%s])", recv, strings.Join(values, ", "))
	d.st.report(newIssue(KindRepeatedAppend, start, replacement))
	d.st.register(start, Edit{StartLine: start, EndLine: end, Replacement: replacement})
}

// expressionCall returns the call when stmt is a bare call expression.
func expressionCall(stmt *sitter.Node) *sitter.Node {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	if expr := stmt.NamedChild(0); expr.Type() == "call" {
		return expr
	}
	return nil
}
