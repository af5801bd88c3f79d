package trend

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/styles"
)

// View renders the trend tab.
func (m *Model) View() string {
	points := m.window.Apply(m.state.GetTrend())
	if len(points) == 0 {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(points),
		m.renderChart(points),
		m.renderSummary(points),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Trend"),
		"",
		styles.HelpStyle.Render("No refreshes recorded yet."),
		styles.HelpStyle.Render("Average waits will appear here after each refresh."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(points []models.TrendPoint) string {
	title := styles.TitleStyle.Render("Average wait by severity")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.window.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	first, last := points[0].At, points[len(points)-1].At
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d refreshes: %s → %s",
		len(points), first.Format("15:04:05"), last.Format("15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

// seriesOf splits trend points into one series of hours per category.
func (m *Model) seriesOf(points []models.TrendPoint) [][]float64 {
	n := len(m.names)
	for _, p := range points {
		n = max(n, len(p.Hours))
	}

	series := make([][]float64, n)
	for i := range series {
		series[i] = make([]float64, len(points))
		for j, p := range points {
			if i < len(p.Hours) {
				series[i][j] = p.Hours[i]
			}
		}
	}
	return series
}

func (m *Model) name(i int) string {
	if i < len(m.names) {
		return m.names[i]
	}
	return fmt.Sprintf("Category %d", i+1)
}

func (m *Model) renderChart(points []models.TrendPoint) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Hours waited")), ""}

	series := m.seriesOf(points)
	chartWidth := max(cardWidth-12, 30)
	chartHeight := 10

	chart := components.RenderTrendChart(series, chartWidth, chartHeight, "hours per refresh")
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	legend := make([]components.LegendItem, len(series))
	for i := range series {
		legend[i] = components.LegendItem{Label: m.name(i), Color: styles.SeverityColor(i)}
	}
	rows = append(rows, "", "  "+components.RenderLegend(legend), "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSummary lists the lowest, latest and highest average per category.
func (m *Model) renderSummary(points []models.TrendPoint) string {
	cardWidth := max(m.width-6, 40)

	rows := []string{
		styles.CardTitleStyle.Render("Summary"),
		styles.HelpStyle.Render(fmt.Sprintf("  %-14s %12s %12s %12s", "", "lowest", "latest", "highest")),
	}

	for i, s := range m.seriesOf(points) {
		lo, hi := s[0], s[0]
		for _, v := range s {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		name := lipgloss.NewStyle().Foreground(styles.SeverityColor(i)).Render(fmt.Sprintf("%-14s", m.name(i)))
		rows = append(rows, fmt.Sprintf("  %s %12s %12s %12s", name,
			aggregate.FormatDuration(lo),
			aggregate.FormatDuration(s[len(s)-1]),
			aggregate.FormatDuration(hi),
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
