// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the dashboard theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// BucketPalette colors permanence buckets from the shortest wait to the longest.
var BucketPalette = []lipgloss.Color{
	lipgloss.Color("42"),  // green
	lipgloss.Color("114"), // light green
	lipgloss.Color("220"), // yellow
	lipgloss.Color("208"), // orange
	lipgloss.Color("196"), // red
}

// SeverityPalette colors severity categories in configured order.
// It matches the series colors of the trend chart.
var SeverityPalette = []lipgloss.Color{
	lipgloss.Color("12"), // blue
	lipgloss.Color("11"), // yellow
	lipgloss.Color("9"),  // red
	lipgloss.Color("10"), // green
	lipgloss.Color("14"), // cyan
}

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// AlertCardStyle highlights a card whose contents need attention.
var AlertCardStyle = CardStyle.
	BorderForeground(Error)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// HighlightStyle emphasizes a section heading inside a card.
var HighlightStyle = lipgloss.NewStyle().
	Foreground(Secondary).
	Bold(true)

// LabelStyle styles the key column of key/value rows.
var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(22)

// ValueStyle styles the value column of key/value rows.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// BucketColor returns the color for bucket i of n. The last bucket is always red.
func BucketColor(i, n int) lipgloss.Color {
	if n <= 0 || i < 0 || i >= n {
		return Subtle
	}
	if i == n-1 {
		return BucketPalette[len(BucketPalette)-1]
	}
	if n <= len(BucketPalette) {
		return BucketPalette[i]
	}
	// Spread the palette over more buckets than colors.
	idx := i * (len(BucketPalette) - 1) / (n - 1)
	return BucketPalette[idx]
}

// SeverityColor returns the color for category i, cycling through the palette.
func SeverityColor(i int) lipgloss.Color {
	if i < 0 {
		return Subtle
	}
	return SeverityPalette[i%len(SeverityPalette)]
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
