package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/mastery"
	"github.com/abhisek/tutoria/internal/tutor"
	"github.com/abhisek/tutoria/internal/ui/components"
	"github.com/abhisek/tutoria/internal/ui/layout"
	"github.com/abhisek/tutoria/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.state.Completed() {
		return s.renderCompletion(width)
	}

	mainWidth := width - 4
	if !layout.IsCompactWidth(width) {
		mainWidth = width - layout.MasteryColumnWidth - 4
	}

	panel := mastery.Panel{
		Predictions: s.state.Predictions(),
		Width:       layout.MasteryColumnWidth,
	}
	return layout.Columns(s.renderMain(mainWidth), panel.View(), width)
}

func (s *SessionScreen) renderMain(width int) string {
	switch s.state.Phase() {
	case tutor.PhaseLoading:
		msg := "Loading question..."
		if s.state.Pending() == assess.OpReset {
			msg = "Restarting session..."
		}
		return "\n  " + s.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(msg)
	case tutor.PhaseFailed:
		return s.renderFailure(width)
	}
	return s.renderQuestion(width)
}

func (s *SessionScreen) renderQuestion(width int) string {
	q := s.state.Question()
	if q == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  Skill: " + q.Skill))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text))
	b.WriteString("\n\n")

	b.WriteString(s.options.View())
	b.WriteString("\n")

	switch s.state.Phase() {
	case tutor.PhaseVerifying:
		b.WriteString("  " + s.spinner.View() + " " + theme.Hint.Render("Checking your answer..."))
	case tutor.PhaseAnswered:
		b.WriteString(s.renderVerdict(width))
	}
	return b.String()
}

func (s *SessionScreen) renderVerdict(width int) string {
	result := s.state.Result()
	if result == nil {
		return ""
	}

	var b strings.Builder
	if result.IsCorrect() {
		b.WriteString(theme.Correct.Render("  Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("  Not quite."))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  The correct answer is: %s", result.CorrectAnswer)))
	}
	b.WriteString("\n\n")

	textStyle := lipgloss.NewStyle().Width(min(width, 70)).PaddingLeft(2).Foreground(theme.Text)
	switch {
	case s.explaining:
		b.WriteString("  " + s.spinner.View() + " " + theme.Hint.Render("Asking the tutor why..."))
		b.WriteString("\n\n")
	case s.explainErr != nil:
		b.WriteString(theme.Warning.Render("  Could not get an explanation: " + s.explainErr.Error()))
		b.WriteString("\n\n")
	case s.explanation != nil:
		b.WriteString(textStyle.Render(s.explanation.Text))
		b.WriteString("\n")
		if s.explanation.Tip != "" {
			b.WriteString(textStyle.Foreground(theme.Accent).Render("Tip: " + s.explanation.Tip))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(theme.Hint.Render("  Press n for the next question."))
	return b.String()
}

func (s *SessionScreen) renderFailure(width int) string {
	err := s.state.Err()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Incorrect.Render("  " + assess.Describe(err)))
	b.WriteString("\n")
	if err != nil {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			PaddingLeft(2).
			Foreground(theme.TextDim).
			Render(err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, "  ",
		components.NewButton("Try again", "t", true, nil).View(), "  ",
		components.NewButton("Restart", "r", false, nil).View()))
	return b.String()
}

func (s *SessionScreen) renderCompletion(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Congratulations!"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("You have completed the session."))
	b.WriteString("\n\n")

	if s.journal != nil {
		b.WriteString(theme.Subtitle.Width(width).Render(
			fmt.Sprintf("%d correct out of %d questions", s.journal.Correct(), s.journal.Served())))
		b.WriteString("\n\n")
	}

	panel := mastery.Panel{
		Predictions: s.state.Predictions(),
		Width:       min(width-8, 60),
	}
	b.WriteString(center(width, panel.View()))
	b.WriteString("\n\n")
	b.WriteString(center(width, components.NewButton("Take the quiz again", "r", true, nil).View()))
	return b.String()
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
