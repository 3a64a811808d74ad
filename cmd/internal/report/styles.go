// Package report renders the headers and stats boxes the inspection tools
// print ahead of their dumps.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#8C8FA1", Dark: "#6C7086"}
	WarnColor    = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}

	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarnColor)
)

// Stat is one label/value line of a box.
type Stat struct {
	Label string
	Value any
}

// Box renders a titled, bordered block of stats.
func Box(title string, stats ...Stat) string {
	lines := make([]string, 0, len(stats)+1)
	lines = append(lines, TitleStyle.Render(title))
	for _, s := range stats {
		lines = append(lines, LabelStyle.Render(s.Label)+ValueStyle.Render(fmt.Sprint(s.Value)))
	}
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Bar draws used/total as a fixed width gauge, e.g. "[#####.....]".
func Bar(used, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := used * width / total
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
