package difficulty

import (
	"math"
	"testing"
)

func TestDecideMix(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     Mix
	}{
		{0.0, Mix{0.5, 0.4, 0.1}},
		{0.3, Mix{0.5, 0.4, 0.1}},
		{0.5999, Mix{0.5, 0.4, 0.1}},
		{0.6, Mix{0.2, 0.6, 0.2}},
		{0.7, Mix{0.2, 0.6, 0.2}},
		{0.7999, Mix{0.2, 0.6, 0.2}},
		{0.8, Mix{0.1, 0.4, 0.5}},
		{0.95, Mix{0.1, 0.4, 0.5}},
		{1.0, Mix{0.1, 0.4, 0.5}},
	}

	for _, tt := range tests {
		got := DecideMix(tt.accuracy)
		if got != tt.want {
			t.Errorf("DecideMix(%v) = %+v, want %+v", tt.accuracy, got, tt.want)
		}
		if sum := got.Easy + got.Medium + got.Hard; math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("DecideMix(%v) sums to %v", tt.accuracy, sum)
		}
	}
}

func TestMixSample(t *testing.T) {
	m := Mix{Easy: 0.2, Medium: 0.6, Hard: 0.2}
	tests := []struct {
		u    float64
		want Tier
	}{
		{0.0, Easy},
		{0.19, Easy},
		{0.2, Medium},
		{0.79, Medium},
		{0.8, Hard},
		{0.999, Hard},
	}
	for _, tt := range tests {
		if got := m.Sample(tt.u); got != tt.want {
			t.Errorf("Sample(%v) = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestDecideLevelShift(t *testing.T) {
	tests := []struct {
		accuracy  float64
		wantDelta int
		wantMsg   string
	}{
		{0.85, 1, MsgLevelUp},
		{0.8, 1, MsgLevelUp},
		{0.65, 0, MsgSteady},
		{0.55, 0, MsgSteady},
		{0.5, 0, MsgSteady},
		{0.45, -1, MsgLevelDown},
		{0.0, -1, MsgLevelDown},
	}
	for _, tt := range tests {
		got := DecideLevelShift(tt.accuracy)
		if got.Delta != tt.wantDelta || got.Message != tt.wantMsg {
			t.Errorf("DecideLevelShift(%v) = %+v, want delta %d", tt.accuracy, got, tt.wantDelta)
		}
	}
}

func TestThresholdsStayDistinct(t *testing.T) {
	// 0.55 is "easy-leaning" for the mix but "steady" for the level.
	if DecideMix(0.55).Easy != 0.5 {
		t.Error("expected easy-leaning mix at 0.55")
	}
	if DecideLevelShift(0.55).Delta != 0 {
		t.Error("expected no level change at 0.55")
	}
}

func TestApplyClamps(t *testing.T) {
	tests := []struct {
		level int
		shift LevelShift
		want  int
	}{
		{2, LevelShift{Delta: 1}, 3},
		{4, LevelShift{Delta: 1}, 4},
		{1, LevelShift{Delta: -1}, 1},
		{3, LevelShift{Delta: -1}, 2},
		{0, LevelShift{Delta: 0}, 1},
	}
	for _, tt := range tests {
		if got := tt.shift.Apply(tt.level); got != tt.want {
			t.Errorf("Apply(%d, %+d) = %d, want %d", tt.level, tt.shift.Delta, got, tt.want)
		}
	}
}

func TestTierString(t *testing.T) {
	if Easy.String() != "easy" || Hard.String() != "hard" || Tier(7).String() != "tier(7)" {
		t.Error("unexpected tier names")
	}
	if Tier(0).Valid() || !Medium.Valid() {
		t.Error("unexpected Valid results")
	}
}
