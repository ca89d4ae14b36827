package components

import (
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/ui/theme"
)

const (
	filledCell = "█"
	emptyCell  = "░"
)

// ProgressBar displays a horizontal bar filled to Fraction, followed by an
// optional Value such as "67%".
type ProgressBar struct {
	Fraction float64
	Value    string
	Width    int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(fraction float64, value string, width int) ProgressBar {
	return ProgressBar{
		Fraction: fraction,
		Value:    value,
		Width:    width,
	}
}

// FilledCells returns how many of width cells a bar at fraction fills.
// The fraction is clamped to [0,1]; NaN fills nothing.
func FilledCells(fraction float64, width int) int {
	if width <= 0 || math.IsNaN(fraction) {
		return 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	return int(math.Floor(fraction * float64(width)))
}

// BarWidth returns the number of cells left for the bar itself.
func (p ProgressBar) BarWidth() int {
	w := p.Width
	if p.Value != "" {
		w -= lipgloss.Width(p.Value) + 2
	}
	if w < 4 {
		w = 4
	}
	return w
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	barWidth := p.BarWidth()
	filled := FilledCells(p.Fraction, barWidth)

	var b strings.Builder
	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(filledCell, filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(emptyCell, barWidth-filled)))

	if p.Value != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + p.Value))
	}
	return b.String()
}
