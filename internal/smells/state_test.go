package smells

import "testing"

func TestStateDeclareKeepsFirstLine(t *testing.T) {
	st := newState()
	st.declare("x", 3)
	st.declare("x", 9)
	if st.declared["x"] != 3 {
		t.Errorf("expected first declaration line 3, got %d", st.declared["x"])
	}
	if !st.unused["x"] {
		t.Error("expected x to be an unused candidate")
	}
}

func TestStateLoopTargetNeverUnused(t *testing.T) {
	st := newState()
	st.bindLoopTarget("i")
	st.declare("i", 2)
	if st.unused["i"] {
		t.Error("loop target must not become an unused candidate")
	}
}

func TestStateReadsInEitherOrder(t *testing.T) {
	st := newState()
	st.declare("before", 1)
	st.markRead("before")
	st.markRead("after")
	st.declare("after", 5)

	if len(st.unused) != 0 {
		t.Errorf("expected no unused names, got %v", st.unused)
	}
}

func TestStateSweepOrder(t *testing.T) {
	st := newState()
	st.declare("zeta", 4)
	st.declare("beta", 2)
	st.declare("alpha", 4)
	st.sweepUnused()

	want := []string{"Remove unused variable 'beta'", "Remove unused variable 'alpha'", "Remove unused variable 'zeta'"}
	if len(st.issues) != len(want) {
		t.Fatalf("expected %d issues, got %d", len(want), len(st.issues))
	}
	for i, issue := range st.issues {
		if issue.Recommendation != want[i] {
			t.Errorf("issue %d: expected %q, got %q", i, want[i], issue.Recommendation)
		}
		if issue.Kind != KindUnusedVariable || issue.Message != "Unused variable" {
			t.Errorf("issue %d: unexpected kind/message %s/%s", i, issue.Kind, issue.Message)
		}
	}
	if st.issues[0].Suggestion != "# Remove declaration of 'beta'" {
		t.Errorf("unexpected suggestion %q", st.issues[0].Suggestion)
	}
}

func TestStateSortedIssuesStable(t *testing.T) {
	st := newState()
	st.report(newIssue(KindRedundantSort, 5, "first"))
	st.report(newIssue(KindListCopy, 2, ""))
	st.report(newIssue(KindRepeatedAppend, 5, "second"))

	issues := st.sortedIssues()
	if issues[0].Line != 2 {
		t.Errorf("expected line 2 first, got %d", issues[0].Line)
	}
	if issues[1].Suggestion != "first" || issues[2].Suggestion != "second" {
		t.Error("expected insertion order to be kept within a line")
	}
}

func TestStateSortedBefore(t *testing.T) {
	st := newState()
	if st.sortedBefore("data") {
		t.Error("first sort must not be redundant")
	}
	if !st.sortedBefore("data") {
		t.Error("second sort must be redundant")
	}
	if st.sortedBefore("other") {
		t.Error("different argument must not be redundant")
	}
}

func TestStateRegisterLastWins(t *testing.T) {
	st := newState()
	st.register(2, Edit{StartLine: 2, EndLine: 4, Replacement: "a"})
	st.register(2, Edit{StartLine: 2, EndLine: 5, Replacement: "b"})
	if len(st.edits) != 1 || st.edits[2].Replacement != "b" {
		t.Errorf("expected the later edit to replace the earlier, got %v", st.edits)
	}
}

func TestIndentBlock(t *testing.T) {
	if got := indentBlock("a\n\nif b:\n    c"); got != "    a\n\n    if b:\n        c" {
		t.Errorf("unexpected indent %q", got)
	}
}
