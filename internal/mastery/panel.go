// Package mastery renders the per-skill mastery estimates of a session as
// labeled progress bars.
//
// The panel is a pure function of the prediction list it is given: it keeps
// the service's order, does not sort, filter or merge duplicates, and holds
// no state of its own.
package mastery

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/ui/components"
	"github.com/abhisek/tutoria/internal/ui/theme"
)

const (
	Heading = "Skill mastery"
	Caption = "The tutor focuses on your weakest skill."
)

// Row is one rendered skill.
type Row struct {
	Skill    string
	Fraction float64
}

// Label returns the rounded percentage shown next to the bar: 0.666 is "67%".
func (r Row) Label() string {
	return fmt.Sprintf("%d%%", int(math.Round(r.Fraction*100)))
}

// Width returns the unrounded fill as a percentage string: 0.666 is "66.6%".
// Floating point noise below four decimals is dropped. Terminal bars use
// Cells; Width is for reports that print the exact value.
func (r Row) Width() string {
	pct := math.Round(r.Fraction*100*1e4) / 1e4
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// Cells returns how many of barWidth cells the row fills.
func (r Row) Cells(barWidth int) int {
	return components.FilledCells(r.Fraction, barWidth)
}

// Rows maps predictions to rows, one per entry, in order.
func Rows(preds []assess.SkillPrediction) []Row {
	rows := make([]Row, len(preds))
	for i, p := range preds {
		rows[i] = Row{Skill: p.Skill, Fraction: p.MasteryProbability}
	}
	return rows
}

// Panel renders a prediction list within Width columns.
type Panel struct {
	Predictions []assess.SkillPrediction
	Width       int
}

// View renders the heading, one block per skill, and the caption.
func (p Panel) View() string {
	width := p.Width
	if width < 12 {
		width = 12
	}

	var b strings.Builder
	b.WriteString(theme.SectionTitle.Render(Heading))
	b.WriteString("\n\n")

	skillStyle := lipgloss.NewStyle().Foreground(theme.Text).MaxWidth(width)
	for _, row := range Rows(p.Predictions) {
		b.WriteString(skillStyle.Render(row.Skill))
		b.WriteString("\n")
		b.WriteString(components.NewProgressBar(row.Fraction, row.Label(), width).View())
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Hint.Width(width).Render(Caption))
	return b.String()
}

// Text renders the panel without styling, for line-mode output.
func Text(preds []assess.SkillPrediction, barWidth int) string {
	if barWidth < 0 {
		barWidth = 0
	}

	var b strings.Builder
	b.WriteString(Heading)
	b.WriteString("\n")
	for _, row := range Rows(preds) {
		filled := row.Cells(barWidth)
		fmt.Fprintf(&b, "  %-20s %s%s %4s\n",
			row.Skill,
			strings.Repeat("#", filled),
			strings.Repeat(".", barWidth-filled),
			row.Label())
	}
	b.WriteString(Caption)
	b.WriteString("\n")
	return b.String()
}
