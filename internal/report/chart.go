// Package report renders analysis results for people: an HTML comparison
// chart, terminal tables and a line diff of the rewrite.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"ecoscan/internal/emissions"
	"ecoscan/internal/smells"
)

const (
	chartWidth  = "900px"
	chartHeight = "500px"

	originalColor  = "#d9534f"
	optimizedColor = "#5cb85c"
)

// ComparisonChart builds the bar chart of original versus optimized
// emission estimates.
func ComparisonChart(title string, cmp *emissions.Comparison) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("Estimated reduction: %.2f%%", cmp.Reduction),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Estimated emissions"}),
	)
	bar.SetXAxis([]string{"Original", "Optimized"})
	bar.AddSeries("Emissions", []opts.BarData{
		{Value: cmp.Original.Emissions, ItemStyle: &opts.ItemStyle{Color: originalColor}},
		{Value: cmp.Optimized.Emissions, ItemStyle: &opts.ItemStyle{Color: optimizedColor}},
	})
	return bar
}

// IssuesChart builds a bar chart with one bar per pattern kind.
func IssuesChart(result *smells.Result) *charts.Bar {
	counts := result.Count()
	kinds := smells.Kinds()

	labels := make([]string, len(kinds))
	data := make([]opts.BarData, len(kinds))
	for i, kind := range kinds {
		labels[i] = string(kind)
		data[i] = opts.BarData{Value: counts[kind]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Detected patterns",
			Subtitle: fmt.Sprintf("%d issues", len(result.Issues)),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 30, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Occurrences"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Issues", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: originalColor}))
	return bar
}

// RenderComparison writes the comparison chart as a standalone HTML page.
func RenderComparison(w io.Writer, title string, cmp *emissions.Comparison) error {
	return RenderReport(w, title, cmp, nil)
}

// RenderReport writes the comparison chart and, when result is not nil, the
// per-pattern issue chart on one HTML page.
func RenderReport(w io.Writer, title string, cmp *emissions.Comparison, result *smells.Result) error {
	if cmp == nil || cmp.Original == nil || cmp.Optimized == nil {
		return fmt.Errorf("comparison is incomplete")
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(ComparisonChart(title, cmp))
	if result != nil {
		page.AddCharts(IssuesChart(result))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
