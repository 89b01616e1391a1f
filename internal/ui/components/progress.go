package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltrack/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar for a 0-100 percentage.
type ProgressBar struct {
	Label       string
	Percent     int
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent int, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// Filled returns how many of barWidth cells are filled.
func (p ProgressBar) Filled(barWidth int) int {
	pct := min(max(p.Percent, 0), 100)
	return barWidth * pct / 100
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	filled := p.Filled(barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += theme.Subtitle.Render(fmt.Sprintf("  %3d%%", min(max(p.Percent, 0), 100)))
	}
	return result
}
