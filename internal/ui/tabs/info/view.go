package info

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/erwait-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderAggregationCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderConfigCard renders where records come from and how often.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	c := m.config
	rows = append(rows, renderConfigRow("Source", c.SourceDescription()))
	if c.RecordsFile == "" {
		rows = append(rows,
			renderConfigRow("Permanence Path", c.PermanencePath),
			renderConfigRow("Severity Path", c.SeverityPath),
			renderConfigRow("HTTP Timeout", c.HTTPTimeout.String()),
		)
	}
	rows = append(rows,
		renderConfigRow("Refresh Interval", formatInterval(c.RefreshInterval)),
		renderConfigRow("Notifications", onOff(c.Notifications)),
		renderConfigRow("Metrics", orNone(c.MetricsAddr)),
		renderConfigRow("Config File", orNone(c.ConfigFile)),
		renderConfigRow("Log File", orNone(c.LogFile)),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAggregationCard renders the bucket labels and the severity categories.
func (m *Model) renderAggregationCard() string {
	rows := []string{styles.CardTitleStyle.Render("Aggregation")}

	if m.config == nil || len(m.config.Boundaries.Hours()) == 0 {
		rows = append(rows, styles.HelpStyle.Render("Not configured"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, styles.HighlightStyle.Render("Buckets"))
	for i, label := range m.config.Boundaries.Labels() {
		box := lipgloss.NewStyle().Foreground(styles.BucketColor(i, m.config.Boundaries.BucketCount())).Render("■")
		rows = append(rows, fmt.Sprintf("  %s %s", box, label))
	}

	rows = append(rows, "", styles.HighlightStyle.Render("Severity categories"))
	for i, c := range m.config.Severities.List() {
		box := lipgloss.NewStyle().Foreground(styles.SeverityColor(i)).Render("■")
		rows = append(rows, fmt.Sprintf("  %s %s %s", box, c.Name, styles.HelpStyle.Render("("+c.Key+")")))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders version information and the last refresh cycle.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About"),
		renderConfigRow("Version", version.GetVersion()),
		renderConfigRow("Build Date", version.GetDate()),
		renderConfigRow("Git Commit", version.GetCommit()),
		renderConfigRow("Go Version", runtime.Version()),
		renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	}

	if snap := m.state.GetSnapshot(); snap != nil {
		rows = append(rows,
			renderConfigRow("Last Cycle", snap.CycleID),
			renderConfigRow("Sequence", strconv.FormatUint(snap.Sequence, 10)),
			renderConfigRow("Records", fmt.Sprintf("%d permanence, %d severity",
				snap.PermanenceRecords, snap.SeverityRecords)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("No refresh completed yet"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func renderConfigRow(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func formatInterval(d time.Duration) string {
	if d <= 0 {
		return "manual"
	}
	return d.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
