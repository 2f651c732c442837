package report

import (
	"bytes"
	"strings"
	"testing"

	"ecoscan/internal/complexity"
	"ecoscan/internal/emissions"
	"ecoscan/internal/smells"
)

func sampleComparison() *emissions.Comparison {
	original := emissions.NewBreakdown(10, emissions.Counts{Loops: 2, BinOps: 3, Literals: 4, Calls: 5}, false)
	optimized := emissions.NewBreakdown(8, emissions.Counts{Loops: 1, BinOps: 1, Literals: 4, Calls: 3}, true)
	return emissions.NewComparison(original, optimized)
}

func TestRenderComparison(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderComparison(&buf, "demo.py", sampleComparison()); err != nil {
		t.Fatalf("RenderComparison() error = %v", err)
	}

	html := buf.String()
	for _, want := range []string{"<html", "demo.py", "Original", "Optimized", "Estimated reduction"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in rendered chart", want)
		}
	}
}

func TestRenderComparison_Incomplete(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderComparison(&buf, "x", &emissions.Comparison{}); err == nil {
		t.Error("expected an error for a comparison without breakdowns")
	}
}

func TestRenderReport_WithIssues(t *testing.T) {
	result := &smells.Result{Issues: []smells.Issue{{Line: 2, Kind: smells.KindListCopy}}}

	var buf bytes.Buffer
	if err := RenderReport(&buf, "demo.py", sampleComparison(), result); err != nil {
		t.Fatalf("RenderReport() error = %v", err)
	}
	html := buf.String()
	for _, want := range []string{"Estimated reduction", "Detected patterns", string(smells.KindListCopy)} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in rendered page", want)
		}
	}
}

func TestIssuesChart(t *testing.T) {
	result := &smells.Result{Issues: []smells.Issue{
		{Line: 1, Kind: smells.KindRangeLen},
		{Line: 4, Kind: smells.KindRangeLen},
		{Line: 9, Kind: smells.KindRedundantSort},
	}}

	var buf bytes.Buffer
	if err := IssuesChart(result).Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), string(smells.KindRangeLen)) {
		t.Error("expected kind labels on the x axis")
	}
}

func TestIssueTable(t *testing.T) {
	out := IssueTable([]smells.Issue{
		{Line: 3, Kind: smells.KindListCopy, Message: "Inefficient list copy", Recommendation: "Use list.copy() method"},
	})
	for _, want := range []string{"3", "list_copy", "Inefficient list copy", "Use list.copy() method"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table, got:\n%s", want, out)
		}
	}
}

func TestIssueTable_Empty(t *testing.T) {
	if got := IssueTable(nil); !strings.Contains(got, "No inefficient patterns") {
		t.Errorf("IssueTable(nil) = %q", got)
	}
}

func TestComparisonTable(t *testing.T) {
	out := ComparisonTable(sampleComparison())
	for _, want := range []string{"Complexity", "Emissions", "Reduction", "%"} {
		if !strings.Contains(strings.ToLower(out), strings.ToLower(want)) {
			t.Errorf("expected %q in table, got:\n%s", want, out)
		}
	}
}

func TestFormatReduction(t *testing.T) {
	if got := FormatReduction(12.345); !strings.Contains(got, "12.35%") {
		t.Errorf("FormatReduction(12.345) = %q", got)
	}
	if got := FormatReduction(-1); !strings.Contains(got, "-1.00%") {
		t.Errorf("FormatReduction(-1) = %q", got)
	}
}

func TestDiff(t *testing.T) {
	original := "a = 1\nb = list(a)\nprint(b)\n"
	optimized := "a = 1\nb = a.copy()\nprint(b)\n"

	got := Diff("demo.py", original, optimized)
	want := "--- demo.py\n+++ optimized_demo.py\n a = 1\n-b = list(a)\n+b = a.copy()\n print(b)\n"
	if got != want {
		t.Errorf("Diff() =\n%s\nwant\n%s", got, want)
	}
}

func TestDiff_Identical(t *testing.T) {
	if got := Diff("x.py", "a\n", "a\n"); got != "" {
		t.Errorf("Diff() of identical texts = %q, want empty", got)
	}
}

func TestStats(t *testing.T) {
	original := "x = ''\nx += a\nx += b\nx += c\n"
	optimized := "x = ''.join([a, b, c])\n"

	stats := Stats(original, optimized)
	if stats.Removed != 4 || stats.Added != 1 {
		t.Errorf("Stats() = %+v, want {Added:1 Removed:4}", stats)
	}
}

func TestSummary(t *testing.T) {
	result := &smells.Result{Issues: []smells.Issue{{Line: 1}}}
	if got := Summary(result, nil); got != "1 issue(s) found" {
		t.Errorf("Summary() = %q", got)
	}
	if got := Summary(result, sampleComparison()); !strings.Contains(got, "->") {
		t.Errorf("Summary() with comparison = %q", got)
	}
}

func TestBreakdownTable(t *testing.T) {
	out := BreakdownTable(sampleComparison().Original)
	for _, want := range []string{"LINES", "Factor", "Emissions", "10"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestFunctionTable(t *testing.T) {
	out := FunctionTable([]complexity.FunctionComplexity{
		{Name: "Stack.push", StartLine: 2, EndLine: 5, Cyclomatic: 2, Cognitive: 1},
	})
	for _, want := range []string{"Stack.push", "2-5", "CYCLOMATIC"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
}
