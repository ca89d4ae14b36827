package app

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutoria/internal/router"
	"github.com/abhisek/tutoria/internal/screen"
	"github.com/abhisek/tutoria/internal/screens/home"
	"github.com/abhisek/tutoria/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	home.Deps

	// StartInSession opens a quiz session on launch instead of the menu.
	StartInSession bool

	// DebugLog, when set, is the file the std logger writes to. Otherwise
	// log output is discarded so it cannot corrupt the screen.
	DebugLog string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	status   string
	initCmds []tea.Cmd
	width    int
	height   int
}

// newAppModel creates a new AppModel with the home screen, plus a session
// on top of it when opts.StartInSession is set.
func newAppModel(opts Options) AppModel {
	m := AppModel{
		router: router.New(home.New(opts.Deps)),
		status: hostOf(opts.APIURL),
	}
	m.initCmds = append(m.initCmds, m.router.Active().Init())
	if opts.StartInSession {
		m.initCmds = append(m.initCmds, m.router.Push(opts.NewSession()))
	}
	return m
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.initCmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders the header, the active screen and the footer.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.DebugLog != "" {
		f, err := tea.LogToFile(opts.DebugLog, "tutoria")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	model := newAppModel(opts)
	final, err := tea.NewProgram(model).Run()
	if m, ok := final.(AppModel); ok {
		m.router.CloseAll()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
