package problemgen

import "testing"

func TestCheckAnswer(t *testing.T) {
	p := &Problem{
		Options: []string{"1/3", "1/2", "2/3", "3/4"},
		Answer:  "1/2",
	}
	numeric := &Problem{
		Options: []string{"4", "3", "2", "1"},
		Answer:  "3",
	}
	text := &Problem{
		Options: []string{"정삼각형", "직각삼각형", "이등변삼각형", "둔각삼각형"},
		Answer:  "직각삼각형",
	}

	tests := []struct {
		name      string
		submitted string
		problem   *Problem
		want      bool
	}{
		{"exact text", "1/2", p, true},
		{"surrounding space", "  1/2 ", p, true},
		{"equivalent fraction", "2/4", p, true},
		{"decimal equivalent", "0.5", p, true},
		{"option index", "2", p, true},
		{"wrong index", "3", p, false},
		{"option letter", "B", p, true},
		{"lowercase letter", "b", p, true},
		{"wrong letter", "d", p, false},
		{"wrong value", "2/3", p, false},
		{"empty", "", p, false},
		{"option text beats index", "3", numeric, true},
		{"index outside options", "5", numeric, false},
		{"korean text", "직각삼각형", text, true},
		{"korean index", "2", text, true},
		{"korean wrong", "정삼각형", text, false},
		{"nil problem", "1", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckAnswer(tt.submitted, tt.problem); got != tt.want {
				t.Errorf("CheckAnswer(%q) = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"7", "7/1"},
		{"007", "7/1"},
		{"3.50", "7/2"},
		{"-4/8", "-1/2"},
		{"3/-4", "-3/4"},
		{"1,200", "1200/1"},
	}
	for _, tt := range tests {
		got, err := normalizeNumber(tt.in)
		if err != nil {
			t.Errorf("normalizeNumber(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"abc", "1/0", "1/x"} {
		if _, err := normalizeNumber(bad); err == nil {
			t.Errorf("normalizeNumber(%q): expected error", bad)
		}
	}
}
