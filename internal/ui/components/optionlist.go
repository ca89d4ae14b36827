package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/ui/theme"
)

// OptionChosenMsg is emitted when the user picks an option.
type OptionChosenMsg struct {
	Option string
}

// OptionList renders the answer options of a question. Options are picked
// with the arrows and Enter, or directly with their number (1-9).
//
// While Disabled no option can be picked. Once Judged the list shows the
// verdict: the Chosen option takes its colour from ChosenRight alone, and
// any other option equal to Correct is marked as the right answer.
type OptionList struct {
	Options  []string
	Cursor   int
	Disabled bool

	Judged      bool
	Chosen      string
	ChosenRight bool
	Correct     string
}

// NewOptionList creates a live list over options.
func NewOptionList(options []string) OptionList {
	return OptionList{Options: options}
}

type mark int

const (
	markNone mark = iota
	markRight
	markWrong
)

// mark returns the verdict marking of option i.
func (l OptionList) mark(i int) mark {
	if !l.Judged {
		return markNone
	}
	opt := l.Options[i]
	switch {
	case opt == l.Chosen && l.ChosenRight:
		return markRight
	case opt == l.Chosen:
		return markWrong
	case opt == l.Correct:
		return markRight
	}
	return markNone
}

// Update handles navigation and selection.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || l.Disabled || l.Judged || len(l.Options) == 0 {
		return l, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
		return l, nil
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
		return l, nil
	case "enter":
		return l, l.choose(l.Cursor)
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(l.Options) {
			l.Cursor = i
			return l, l.choose(i)
		}
	}
	return l, nil
}

func (l OptionList) choose(i int) tea.Cmd {
	opt := l.Options[i]
	return func() tea.Msg { return OptionChosenMsg{Option: opt} }
}

// View renders the list.
func (l OptionList) View() string {
	var b strings.Builder
	for i, opt := range l.Options {
		prefix := "  "
		if i == l.Cursor && !l.Judged {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)
		b.WriteString(l.style(i, opt).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (l OptionList) style(i int, opt string) lipgloss.Style {
	switch l.mark(i) {
	case markRight:
		return theme.Correct
	case markWrong:
		return theme.Incorrect
	}
	switch {
	case l.Judged:
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	case l.Disabled && opt == l.Chosen:
		return theme.Warning
	case l.Disabled:
		return theme.Disabled
	case i == l.Cursor:
		return theme.Selected
	}
	return theme.Unselected
}
