package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestPushAndPop(t *testing.T) {
	first := &stubScreen{title: "first"}
	second := &stubScreen{title: "second"}
	m := New(first, Status{})

	m, _ = update(t, m, PushMsg{Screen: second})
	if m.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", m.Depth())
	}
	if m.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", m.Active().Title())
	}
	if !second.initRan {
		t.Error("expected Init() to run on pushed screen")
	}

	m, _ = update(t, m, PopMsg{})
	if m.Depth() != 1 || m.Active().Title() != "first" {
		t.Errorf("expected only 'first' left, got depth %d", m.Depth())
	}
}

func TestPopLastScreenQuits(t *testing.T) {
	m := New(&stubScreen{title: "only"}, Status{})
	_, cmd := update(t, m, PopMsg{})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	root := &stubScreen{title: "root"}
	m := New(root, Status{})

	_, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("expected esc on the root screen to reach the screen")
	}
	if len(root.got) != 1 {
		t.Errorf("expected root to receive esc, got %d messages", len(root.got))
	}

	m, _ = update(t, m, PushMsg{Screen: &stubScreen{title: "chat"}})
	_, cmd = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if _, ok := cmd().(PopMsg); !ok {
		t.Error("expected PopMsg")
	}
}

func TestStatusLine(t *testing.T) {
	m := New(&stubScreen{}, Status{})
	if got := m.statusLine(); got != "" {
		t.Errorf("expected empty status, got %q", got)
	}

	m, _ = update(t, m, StatusMsg{StudentID: "kim", Level: 3, Accuracy: 0.756})
	if got := m.statusLine(); got != "kim  Lv.3  76%" {
		t.Errorf("expected %q, got %q", "kim  Lv.3  76%", got)
	}
}
