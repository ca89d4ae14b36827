package home

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/router"
	"github.com/abhisek/tutoria/internal/screen"
	"github.com/abhisek/tutoria/internal/screens/history"
	sessionscreen "github.com/abhisek/tutoria/internal/screens/session"
	"github.com/abhisek/tutoria/internal/store"
	"github.com/abhisek/tutoria/internal/tutor"
	"github.com/abhisek/tutoria/internal/ui/components"
	"github.com/abhisek/tutoria/internal/ui/theme"
)

// Deps are the services screens reachable from home need. Events, History
// and Explainer may be nil.
type Deps struct {
	Service   assess.Service
	Events    store.EventRepo
	History   store.HistoryRepo
	Explainer sessionscreen.Explainer
	APIURL    string

	// ExplainerName describes the explanation model, e.g. "anthropic/claude-haiku-4-5".
	ExplainerName string

	// Warnings receives local recording failures. Nil uses the std logger.
	Warnings io.Writer
}

// NewSession creates a session screen with a fresh journal.
func (d Deps) NewSession() *sessionscreen.SessionScreen {
	var journal *tutor.Journal
	if d.Events != nil {
		journal = tutor.NewJournal(d.Events, uuid.NewString(), d.APIURL)
		journal.Warnings = d.Warnings
		if journal.Warnings == nil {
			journal.Warnings = log.Writer()
		}
	}
	return sessionscreen.New(d.Service, journal, d.Explainer)
}

type lastSessionMsg struct {
	Session *store.SessionSummaryRecord
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps Deps
	menu components.Menu
	last *store.SessionSummaryRecord
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumable = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	historyItem := components.MenuItem{Label: "History", Action: func() tea.Cmd {
		return router.Push(history.New(deps.History))
	}}
	if deps.History == nil {
		historyItem.Disabled = true
		historyItem.Note = "no local database"
	}

	items := []components.MenuItem{
		{Label: "Start quiz", Action: func() tea.Cmd {
			return router.Push(deps.NewSession())
		}},
		historyItem,
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps: deps,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadLast()
}

// Resume refreshes the last session summary after a session or the
// history view closes.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadLast()
}

func (h *HomeScreen) loadLast() tea.Cmd {
	repo := h.deps.History
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		recs, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: 1})
		if err != nil || len(recs) == 0 {
			return lastSessionMsg{}
		}
		return lastSessionMsg{Session: &recs[0]}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(lastSessionMsg); ok {
		h.last = msg.Session
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var sections []string
	sections = append(sections,
		"\n"+theme.Title.Width(width).Render("T U T O R I A")+"\n"+
			theme.Subtitle.Width(width).Render("Adaptive practice, one question at a time"))

	status := []string{
		dim.Render("Service:      ") + lipgloss.NewStyle().Foreground(theme.Text).Render(h.deps.APIURL),
		dim.Render("Explanations: ") + h.explainerStatus(),
	}
	if h.last != nil {
		status = append(status, dim.Render("Last session: ")+
			lipgloss.NewStyle().Foreground(theme.Text).Render(history.SummaryLine(*h.last)))
	}
	sections = append(sections, center(theme.Card.Render(strings.Join(status, "\n"))))

	sections = append(sections, center(h.menu.View()))

	return strings.Join(sections, "\n\n")
}

func (h *HomeScreen) explainerStatus() string {
	if h.deps.Explainer == nil {
		return lipgloss.NewStyle().Foreground(theme.Border).Render("off")
	}
	name := "on"
	if h.deps.ExplainerName != "" {
		name = fmt.Sprintf("on (%s)", h.deps.ExplainerName)
	}
	return lipgloss.NewStyle().Foreground(theme.Success).Render(name)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
