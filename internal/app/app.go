// Package app is the root Bubble Tea model of the terminal client. It
// keeps a stack of screens and draws the shared header and footer.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdaily/internal/ui/layout"
)

// Screen is one full-window view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content between header and footer.
	View(width, height int) string
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// PushMsg opens Screen on top of the current one.
type PushMsg struct {
	Screen Screen
}

// PopMsg closes the current screen. Popping the last screen quits.
type PopMsg struct{}

// Status is shown on the right of the header.
type Status struct {
	StudentID string
	Level     int
	Accuracy  float64
}

// StatusMsg replaces the header status.
type StatusMsg Status

// Model is the root model.
type Model struct {
	stack  []Screen
	status Status
	width  int
	height int
}

// New creates a Model showing first.
func New(first Screen, status Status) Model {
	return Model{stack: []Screen{first}, status: status}
}

// Depth returns the number of open screens.
func (m Model) Depth() int {
	return len(m.stack)
}

// Active returns the top screen.
func (m Model) Active() Screen {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m Model) Init() tea.Cmd {
	if s := m.Active(); s != nil {
		return s.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case PushMsg:
		m.stack = append(m.stack, msg.Screen)
		return m, msg.Screen.Init()

	case PopMsg:
		if len(m.stack) <= 1 {
			return m, tea.Quit
		}
		m.stack = m.stack[:len(m.stack)-1]
		return m, nil

	case StatusMsg:
		m.status = Status(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if len(m.stack) > 1 {
				return m, func() tea.Msg { return PopMsg{} }
			}
		}
	}

	active := m.Active()
	if active == nil {
		return m, nil
	}
	updated, cmd := active.Update(msg)
	m.stack[len(m.stack)-1] = updated
	return m, cmd
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.statusLine(), m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "종료"}}
	if p, ok := active.(KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if len(m.stack) > 1 {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "뒤로"},
			{Key: "Ctrl+C", Description: "종료"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := ""
	if active != nil {
		content = active.View(m.width, contentHeight)
	}

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m Model) statusLine() string {
	if m.status.StudentID == "" {
		return ""
	}
	return fmt.Sprintf("%s  Lv.%d  %d%%", m.status.StudentID, m.status.Level, int(m.status.Accuracy*100+0.5))
}

// Run starts the program with first as the bottom screen.
func Run(first Screen, status Status) error {
	p := tea.NewProgram(New(first, status))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
