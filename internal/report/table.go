package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ecoscan/internal/complexity"
	"ecoscan/internal/emissions"
	"ecoscan/internal/smells"
)

var (
	kindColor      = color.New(color.FgYellow).SprintFunc()
	reductionColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	increaseColor  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

// IssueTable renders issues as a terminal table, one row per issue.
func IssueTable(issues []smells.Issue) string {
	if len(issues) == 0 {
		return "No inefficient patterns found.\n"
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Line", "Kind", "Issue", "Recommendation"})
	for _, issue := range issues {
		tbl.AppendRow(table.Row{issue.Line, kindColor(string(issue.Kind)), issue.Message, issue.Recommendation})
	}
	tbl.AppendFooter(table.Row{"", "", "Total", len(issues)})
	return tbl.Render() + "\n"
}

// ComparisonTable renders the metric breakdown of both texts and the
// estimated reduction.
func ComparisonTable(cmp *emissions.Comparison) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Metric", "Original", "Optimized"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	o, p := cmp.Original, cmp.Optimized
	tbl.AppendRows([]table.Row{
		{"Lines", o.Lines, p.Lines},
		{"Loops", o.Loops, p.Loops},
		{"Binary operators", o.BinOps, p.BinOps},
		{"Literals", o.Literals, p.Literals},
		{"Calls", o.Calls, p.Calls},
		{"Complexity", fmt.Sprintf("%.2f", o.Complexity), fmt.Sprintf("%.2f", p.Complexity)},
		{"Emissions", FormatEmissions(o.Emissions), FormatEmissions(p.Emissions)},
	})
	tbl.AppendFooter(table.Row{"Reduction", "", FormatReduction(cmp.Reduction)})
	return tbl.Render() + "\n"
}

// FormatEmissions prints an estimate with enough precision for the tiny
// values the model produces.
func FormatEmissions(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// FormatReduction colours a reduction percentage by sign.
func FormatReduction(pct float64) string {
	s := fmt.Sprintf("%.2f%%", pct)
	if pct < 0 {
		return increaseColor(s)
	}
	return reductionColor(s)
}

// Summary is a one-paragraph plain text recap for log lines and the
// terminal.
func Summary(result *smells.Result, cmp *emissions.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d issue(s) found", len(result.Issues))
	if cmp != nil {
		fmt.Fprintf(&b, "; emissions %s -> %s (%s)",
			FormatEmissions(cmp.Original.Emissions),
			FormatEmissions(cmp.Optimized.Emissions),
			FormatReduction(cmp.Reduction))
	}
	return b.String()
}

// BreakdownTable renders the metrics behind a single estimate.
func BreakdownTable(b *emissions.Breakdown) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tbl.AppendRows([]table.Row{
		{"Lines", b.Lines},
		{"Loops", b.Loops},
		{"Binary operators", b.BinOps},
		{"Literals", b.Literals},
		{"Calls", b.Calls},
		{"Complexity", fmt.Sprintf("%.2f", b.Complexity)},
		{"Factor", fmt.Sprintf("%.6g", b.Factor)},
	})
	tbl.AppendFooter(table.Row{"Emissions", FormatEmissions(b.Emissions)})
	return tbl.Render() + "\n"
}

// FunctionTable renders per-function complexity.
func FunctionTable(functions []complexity.FunctionComplexity) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Function", "Lines", "Cyclomatic", "Cognitive"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for _, f := range functions {
		tbl.AppendRow(table.Row{f.Name, fmt.Sprintf("%d-%d", f.StartLine, f.EndLine), f.Cyclomatic, f.Cognitive})
	}
	return tbl.Render() + "\n"
}
