package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoiceCorrectIndex(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		answer  string
		want    int
	}{
		{"exact", []string{"52", "62", "63", "61"}, "62", 1},
		{"trimmed", []string{" 7/8", "4/12", "1", "5/8"}, "7/8 ", 0},
		{"missing", []string{"1", "2", "3", "4"}, "5", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMultiChoice(tt.options, tt.answer)
			if m.CorrectIndex != tt.want {
				t.Errorf("expected correct index %d, got %d", tt.want, m.CorrectIndex)
			}
		})
	}
}

func TestMultiChoiceArrowsAndEnter(t *testing.T) {
	m := NewMultiChoice([]string{"52", "62", "63", "61"}, "62")

	m = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("expected selection 1, got %d", m.Selected)
	}

	m = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || !m.IsCorrect() {
		t.Error("expected a correct submission")
	}
	if m.Chosen() != "62" {
		t.Errorf("expected chosen 62, got %q", m.Chosen())
	}

	// Further keys are ignored once submitted.
	m = m.Update(keyPress('3'))
	if m.ChosenIndex != 1 {
		t.Errorf("expected chosen index to stay 1, got %d", m.ChosenIndex)
	}
}

func TestMultiChoiceNumberKey(t *testing.T) {
	m := NewMultiChoice([]string{"52", "62", "63", "61"}, "62")
	m = m.Update(keyPress('4'))
	if !m.Submitted {
		t.Fatal("expected number key to submit")
	}
	if m.IsCorrect() {
		t.Error("expected option 4 to be wrong")
	}
	if m.Chosen() != "61" {
		t.Errorf("expected chosen 61, got %q", m.Chosen())
	}
}

func TestMultiChoiceView(t *testing.T) {
	m := NewMultiChoice([]string{"52", "62", "63", "61"}, "62")
	view := m.View()
	for _, want := range []string{"①", "④", "63"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestProgressBarClamps(t *testing.T) {
	if p := NewProgressBar("", 1.7, true, 20); p.Percent != 1 {
		t.Errorf("expected percent 1, got %v", p.Percent)
	}
	if p := NewProgressBar("", -0.2, true, 20); p.Percent != 0 {
		t.Errorf("expected percent 0, got %v", p.Percent)
	}
	if view := NewProgressBar("정답률", 0.5, true, 30).View(); !strings.Contains(view, "50%") {
		t.Errorf("expected 50%% in view, got %q", view)
	}
}
