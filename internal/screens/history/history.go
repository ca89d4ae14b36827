package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/router"
	"github.com/abhisek/tutoria/internal/screen"
	"github.com/abhisek/tutoria/internal/store"
	"github.com/abhisek/tutoria/internal/ui/layout"
	"github.com/abhisek/tutoria/internal/ui/theme"
)

// PageSize is the number of sessions listed.
const PageSize = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Err      error
}

type answersLoadedMsg struct {
	SessionID string
	Answers   []store.AnswerEventRecord
	Err       error
}

// HistoryScreen lists recorded sessions. Enter expands a session into its
// answers and final mastery profile.
type HistoryScreen struct {
	repo     store.HistoryRepo
	sessions []store.SessionSummaryRecord
	answers  map[string][]store.AnswerEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.HistoryRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		answers:  make(map[string][]store.AnswerEventRecord),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: PageSize})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.answers[msg.SessionID] = msg.Answers
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if len(s.sessions) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			if s.expanded[s.selected] {
				return s, s.loadAnswers(s.sessions[s.selected].SessionID)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) loadAnswers(sessionID string) tea.Cmd {
	if _, ok := s.answers[sessionID]; ok {
		return nil
	}
	repo := s.repo
	return func() tea.Msg {
		answers, err := repo.QueryAnswers(context.Background(), sessionID)
		return answersLoadedMsg{SessionID: sessionID, Answers: answers, Err: err}
	}
}

// Accuracy returns the share of correct answers as a percentage.
func Accuracy(rec store.SessionSummaryRecord) float64 {
	if rec.Answered == 0 {
		return 0
	}
	return float64(rec.CorrectAnswers) / float64(rec.Answered) * 100
}

// SummaryLine renders one session as a single line.
func SummaryLine(rec store.SessionSummaryRecord) string {
	status := ""
	if rec.Completed {
		status = "  completed"
	}
	restarts := ""
	if rec.Restarts > 0 {
		restarts = fmt.Sprintf("  %d restart(s)", rec.Restarts)
	}
	return fmt.Sprintf("%s  %d answered  %.0f%% correct%s%s",
		rec.Timestamp.Format("Jan 02, 2006 15:04"), rec.Answered, Accuracy(rec), restarts, status)
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, "Error: "+s.errMsg, theme.Error)
	}
	if !s.loaded {
		return layout.Centered(width, "Loading history...", theme.TextDim)
	}
	if len(s.sessions) == 0 {
		return layout.Centered(width, "No sessions yet. Start a quiz!", theme.TextDim)
	}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("\n")
	for i, rec := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render("  " + prefix + SummaryLine(rec)))
		b.WriteString("\n")

		if !s.expanded[i] {
			continue
		}

		answers, ok := s.answers[rec.SessionID]
		switch {
		case !ok:
			b.WriteString(dim.Render("      Loading answers..."))
			b.WriteString("\n")
		case len(answers) == 0:
			b.WriteString(dim.Italic(true).Render("      No answers recorded"))
			b.WriteString("\n")
		}
		for _, a := range answers {
			mark := theme.Correct.Render("✓")
			if !a.Correct {
				mark = theme.Incorrect.Render("✗")
			}
			line := fmt.Sprintf("[%s] %s  you: %s  answer: %s", a.Skill, a.QuestionText, a.ChosenAnswer, a.CorrectAnswer)
			b.WriteString("      " + mark + " " + dim.Render(line))
			b.WriteString("\n")
		}

		if len(rec.Profile) > 0 {
			b.WriteString(theme.SectionTitle.Render("      Final profile"))
			b.WriteString("\n")
			for _, p := range rec.Profile {
				b.WriteString(dim.Render(fmt.Sprintf("        %-20s %3.0f%%", p.Skill, p.Probability*100)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
