package diagnosis

import "testing"

func TestRunClassifiers(t *testing.T) {
	tests := []struct {
		name       string
		input      ClassifyInput
		wantKind   ErrorKind
		wantSource string
	}{
		{"fast answer", ClassifyInput{ResponseTimeMs: 1500, RecentAccuracy: 0.5}, KindGuess, "speed-rush"},
		{"fast beats careless", ClassifyInput{ResponseTimeMs: 1500, RecentAccuracy: 0.9}, KindGuess, "speed-rush"},
		{"high accuracy", ClassifyInput{ResponseTimeMs: 5000, RecentAccuracy: 0.9}, KindCalculation, "careless"},
		{"unknown time", ClassifyInput{ResponseTimeMs: 0, RecentAccuracy: 0.5}, "", ""},
		{"accuracy at threshold", ClassifyInput{ResponseTimeMs: 5000, RecentAccuracy: 0.8}, "", ""},
		{"time at threshold", ClassifyInput{ResponseTimeMs: SpeedRushThresholdMs, RecentAccuracy: 0.4}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := RunClassifiers(DefaultClassifiers(), &tt.input)
			if tt.wantKind == "" {
				if hint != nil {
					t.Errorf("expected no hint, got %+v", hint)
				}
				return
			}
			if hint == nil {
				t.Fatal("expected a hint")
			}
			if hint.Kind != tt.wantKind || hint.Source != tt.wantSource {
				t.Errorf("expected %s from %s, got %s from %s", tt.wantKind, tt.wantSource, hint.Kind, hint.Source)
			}
		})
	}
}

func TestErrorKindValid(t *testing.T) {
	for _, info := range Kinds() {
		if !info.Kind.Valid() {
			t.Errorf("%q should be valid", info.Kind)
		}
	}
	if len(Kinds()) != 4 {
		t.Errorf("expected 4 kinds, got %d", len(Kinds()))
	}
	if ErrorKind("careless").Valid() {
		t.Error("unexpected kind accepted")
	}
}

func TestAnalysisSchemaEnum(t *testing.T) {
	props := AnalysisSchema.Definition["properties"].(map[string]any)
	enum := props["error_type"].(map[string]any)["enum"].([]any)
	want := []string{"계산 실수", "개념 오적용", "문제 해석 오류", "찍음"}
	if len(enum) != len(want) {
		t.Fatalf("expected %d enum values, got %d", len(want), len(enum))
	}
	for i, w := range want {
		if enum[i] != w {
			t.Errorf("enum[%d]: expected %q, got %v", i, w, enum[i])
		}
	}
}
