package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/styles"
)

const sparklineWidth = 20

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	sections := []string{m.renderTitle(), m.renderStatus()}

	if snap := m.state.GetSnapshot(); snap != nil {
		sections = append(sections,
			m.renderPermanenceCard(snap),
			m.renderSeverityCard(snap),
		)
	} else {
		sections = append(sections, m.renderEmpty())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := m.title
	if title == "" {
		title = "ER Wait Times"
	}
	heading := styles.TitleStyle.Render(title)
	subtitle := styles.HelpStyle.Render("Emergency room permanence and wait by severity")

	return lipgloss.JoinVertical(lipgloss.Left, heading, subtitle, "")
}

// renderStatus renders the last update time, refresh activity and the last error.
func (m *Model) renderStatus() string {
	var parts []string

	updated := m.state.GetLastUpdated()
	if updated.IsZero() {
		parts = append(parts, styles.HelpStyle.Render("Never updated"))
	} else {
		parts = append(parts, styles.HelpStyle.Render(fmt.Sprintf("Updated %s (%s)",
			updated.Format("15:04:05"), formatAge(m.state.TimeSinceUpdate()))))
	}

	if m.state.IsRefreshing() {
		parts = append(parts, m.spinner.Inline("refreshing"))
	}

	if m.source != "" {
		parts = append(parts, styles.HelpStyle.Render("from "+m.source))
	}

	line := strings.Join(parts, styles.HelpStyle.Render(" · "))

	if err := m.state.GetLastError(); err != nil {
		line = lipgloss.JoinVertical(lipgloss.Left, line,
			styles.ErrorTextStyle.Render("Last refresh failed: "+err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, line, "")
}

// formatAge renders how old the data is in its largest whole unit.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderPermanenceCard renders the cases-per-bucket chart.
func (m *Model) renderPermanenceCard(snap *models.Snapshot) string {
	cardWidth := m.cardWidth()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Cases by wait duration")),
		components.RenderBarChart(snap.Permanence, components.BarChartOptions{
			Width:     cardWidth - 6,
			Color:     styles.BucketColor,
			ShowShare: true,
			BarValues: m.animatedValues(bucketKey, snap.Permanence.Len()),
		}),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("%d cases", snap.PermanenceRecords)),
	}

	card := styles.CardStyle
	if overflow := snap.OverflowCount(); overflow > 0 {
		card = styles.AlertCardStyle
		last := snap.Permanence.Labels[len(snap.Permanence.Labels)-1]
		rows = append(rows, styles.ErrorTextStyle.Render(
			fmt.Sprintf("%d cases waiting %s", overflow, last)))
	}

	return card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderSeverityCard renders the average wait per severity with a session sparkline.
func (m *Model) renderSeverityCard(snap *models.Snapshot) string {
	cardWidth := m.cardWidth()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("◎")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Average wait by severity")),
		components.RenderBarChart(snap.Severity, components.BarChartOptions{
			Width:     cardWidth - 6,
			Color:     func(i, _ int) lipgloss.Color { return styles.SeverityColor(i) },
			Format:    func(float64) string { return "" },
			BarValues: m.animatedValues(severityKey, snap.Severity.Len()),
		}),
		"",
	}

	trend := m.state.GetTrend()
	nameWidth := 0
	for _, a := range snap.Averages {
		nameWidth = max(nameWidth, lipgloss.Width(a.Name))
	}

	for i, a := range snap.Averages {
		history := make([]float64, 0, len(trend))
		for _, p := range trend {
			if i < len(p.Hours) {
				history = append(history, p.Hours[i])
			}
		}
		name := lipgloss.NewStyle().Foreground(styles.SeverityColor(i)).Render(
			a.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(a.Name)))
		spark := components.RenderSparkline(history, sparklineWidth)
		rows = append(rows, fmt.Sprintf("%s  %s  %s", name, spark,
			styles.HelpStyle.Render(fmt.Sprintf("%s over %d cases", aggregate.FormatDuration(a.Hours), a.Count))))
	}

	if snap.Degraded > 0 {
		rows = append(rows, "", styles.WarningTextStyle.Render(
			fmt.Sprintf("%d unreadable wait times counted as zero", snap.Degraded)))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderEmpty is shown when the first refresh failed.
func (m *Model) renderEmpty() string {
	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No wait time data yet")),
		"",
		styles.InfoTextStyle.Render("  ╰─▶ Press r to retry"),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
