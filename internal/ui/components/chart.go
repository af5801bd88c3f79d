// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/styles"
)

// trendSeriesColors lines up with styles.SeverityPalette.
var trendSeriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Yellow,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Cyan,
}

// BarChartOptions controls how a series is drawn by RenderBarChart.
type BarChartOptions struct {
	Width int
	// Color picks the bar color for point i of n. Nil draws plain bars.
	Color func(i, n int) lipgloss.Color
	// Format renders the value column. Nil prints an integer count.
	Format func(v float64) string
	// ShowShare appends each value's share of the series total.
	ShowShare bool
	// BarValues overrides the values used for bar lengths, e.g. while animating.
	// It is ignored unless it has one entry per point.
	BarValues []float64
}

// RenderBarChart creates a horizontal bar chart, one row per label.
func RenderBarChart(series models.ChartSeries, opts BarChartOptions) string {
	if series.Len() == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	format := opts.Format
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%d", int(v)) }
	}

	barValues := series.Values
	if len(opts.BarValues) == series.Len() {
		barValues = opts.BarValues
	}

	maxVal := 0.0
	for _, v := range series.Values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range series.Labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	valueCol := 0
	for _, v := range series.Values {
		valueCol = max(valueCol, len(format(v)))
	}

	// Leave room for the label, the axis, the value and the share.
	reserved := maxLabelLen + valueCol + 4
	if opts.ShowShare {
		reserved += 7
	}
	barWidth := max(opts.Width-reserved, 10)

	total := series.Total()
	n := series.Len()

	var lines []string
	for i, v := range series.Values {
		label := ""
		if i < len(series.Labels) {
			label = series.Labels[i]
		}
		paddedLabel := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label)) + label

		barLen := min(max(int((barValues[i]/maxVal)*float64(barWidth)), 0), barWidth)
		bar := strings.Repeat("█", barLen)
		if opts.Color != nil {
			bar = lipgloss.NewStyle().Foreground(opts.Color(i, n)).Render(bar)
		}

		line := paddedLabel + " │" + bar + fmt.Sprintf(" %*s", valueCol, format(v))
		if opts.ShowShare {
			line += styles.HelpStyle.Render(fmt.Sprintf(" %5.1f%%", share(v, total)))
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func share(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return v / total * 100
}

// RenderTrendChart draws one line per series over the session history.
// Shorter series are left-padded with zeros so that the newest points line up.
func RenderTrendChart(series [][]float64, width, height int, caption string) string {
	maxLen := 0
	for _, s := range series {
		maxLen = max(maxLen, len(s))
	}
	if maxLen == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	data := make([][]float64, len(series))
	colors := make([]asciigraph.AnsiColor, len(series))
	for i, s := range series {
		padded := make([]float64, maxLen)
		copy(padded[maxLen-len(s):], s)
		// asciigraph needs two points to draw a line.
		if maxLen == 1 {
			padded = append(padded, padded[0])
		}
		data[i] = padded
		colors[i] = trendSeriesColors[i%len(trendSeriesColors)]
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline of the last width values.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	for _, v := range values {
		idx := int((v / maxVal) * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[idx])
	}
	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
