package planner

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/abhisek/mathdaily/internal/difficulty"
)

func newTestPlanner(seed uint64) *Planner {
	return New(rand.NewPCG(seed, seed+1))
}

func TestBuildPlanScenario(t *testing.T) {
	p := newTestPlanner(1)
	profile := Profile{
		RecentAccuracy: 0.85,
		WeakTopics:     []string{"분수 덧셈"},
		CurrentTopics:  []string{"소수의 곱셈"},
	}

	plan := p.BuildPlan(profile, nil, 10)
	if len(plan) != 10 {
		t.Fatalf("expected 10 items, got %d", len(plan))
	}

	counts := Counts(plan)
	if counts[CategoryReview] != 3 || counts[CategoryCurrent] != 5 || counts[CategoryChallenge] != 2 {
		t.Fatalf("unexpected allocation: %v", counts)
	}

	for _, it := range plan {
		switch it.Category {
		case CategoryReview:
			if it.Topic != "분수 덧셈" {
				t.Errorf("review topic = %q", it.Topic)
			}
			if it.Tier == difficulty.Hard {
				t.Error("review slot must never be hard")
			}
		case CategoryChallenge:
			if it.Topic != "소수의 곱셈" || it.Tier != difficulty.Hard {
				t.Errorf("unexpected challenge slot: %+v", it)
			}
		case CategoryCurrent:
			if it.Topic != "소수의 곱셈" {
				t.Errorf("current topic = %q", it.Topic)
			}
		}
	}
}

func TestBuildPlanAllocationSums(t *testing.T) {
	p := newTestPlanner(7)
	profiles := []Profile{
		{RecentAccuracy: 0.3, WeakTopics: []string{"a", "b"}, CurrentTopics: []string{"c"}},
		{RecentAccuracy: 0.7, CurrentTopics: []string{"c"}},
		{RecentAccuracy: 0.9},
	}
	for _, prof := range profiles {
		for n := 0; n <= 40; n++ {
			plan := p.BuildPlan(prof, []string{"fallback"}, n)
			if len(plan) != n {
				t.Fatalf("N=%d: expected %d items, got %d", n, n, len(plan))
			}
			counts := Counts(plan)
			wantChallenge := n * 20 / 100
			if counts[CategoryChallenge] != wantChallenge {
				t.Errorf("N=%d: expected %d challenge, got %d", n, wantChallenge, counts[CategoryChallenge])
			}
			if counts[CategoryReview]+counts[CategoryCurrent]+counts[CategoryChallenge] != n {
				t.Errorf("N=%d: categories do not add up: %v", n, counts)
			}
		}
	}
}

func TestBuildPlanEmptyWeakTopics(t *testing.T) {
	p := newTestPlanner(3)
	plan := p.BuildPlan(Profile{RecentAccuracy: 0.7, CurrentTopics: []string{"곱셈"}}, nil, 10)

	counts := Counts(plan)
	if counts[CategoryReview] != 0 {
		t.Errorf("expected no review items, got %d", counts[CategoryReview])
	}
	if counts[CategoryCurrent] != 8 {
		t.Errorf("expected current to absorb review share (8), got %d", counts[CategoryCurrent])
	}
}

func TestBuildPlanFallbackTopics(t *testing.T) {
	p := newTestPlanner(5)

	plan := p.BuildPlan(Profile{RecentAccuracy: 0.5}, []string{"측정"}, 5)
	for _, it := range plan {
		switch it.Category {
		case CategoryCurrent:
			if it.Topic != "측정" {
				t.Errorf("expected caller fallback topic, got %q", it.Topic)
			}
		case CategoryChallenge:
			if it.Topic != ChallengeFallbackTopic {
				t.Errorf("expected challenge fallback, got %q", it.Topic)
			}
		}
	}

	plan = p.BuildPlan(Profile{}, nil, 3)
	for _, it := range plan {
		if it.Category == CategoryCurrent && it.Topic != CurrentFallbackTopic {
			t.Errorf("expected %q, got %q", CurrentFallbackTopic, it.Topic)
		}
	}
}

func TestBuildPlanTierDistributionFollowsMix(t *testing.T) {
	p := newTestPlanner(11)
	profile := Profile{RecentAccuracy: 0.3, CurrentTopics: []string{"x"}}

	tiers := map[difficulty.Tier]int{}
	for i := 0; i < 200; i++ {
		for _, it := range p.BuildPlan(profile, nil, 10) {
			if it.Category == CategoryCurrent {
				tiers[it.Tier]++
			}
		}
	}
	// Mix for 0.3 is 50/40/10, so easy should clearly dominate hard.
	if tiers[difficulty.Easy] <= tiers[difficulty.Hard]*2 {
		t.Errorf("expected easy-heavy distribution, got %v", tiers)
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	profile := Profile{RecentAccuracy: 0.7, WeakTopics: []string{"a", "b", "c"}, CurrentTopics: []string{"d", "e"}}
	a := newTestPlanner(42).BuildPlan(profile, nil, 12)
	b := newTestPlanner(42).BuildPlan(profile, nil, 12)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical plans for identical seeds")
	}
}

func TestBuildUnitPlan(t *testing.T) {
	p := newTestPlanner(1)
	tests := []struct {
		unit       string
		wantVisual bool
	}{
		{"직각삼각형과 직사각형", true},
		{"원의 방정식", true},
		{"이차함수", true},
		{"세 자리 수의 덧셈", false},
		{"Area of a Triangle", true},
	}
	for _, tt := range tests {
		plan := p.BuildUnitPlan(tt.unit, 4)
		if len(plan) != 4 {
			t.Fatalf("expected 4 items, got %d", len(plan))
		}
		for _, it := range plan {
			if it.Topic != tt.unit || it.Tier != difficulty.Medium || it.Category != CategoryDrill {
				t.Errorf("unexpected drill slot: %+v", it)
			}
			if it.RequireVisual != tt.wantVisual {
				t.Errorf("%q: RequireVisual = %v, want %v", tt.unit, it.RequireVisual, tt.wantVisual)
			}
		}
	}
	if got := p.BuildUnitPlan("x", 0); len(got) != 0 {
		t.Errorf("expected empty plan, got %d", len(got))
	}
}

func TestBuildCatalogPlan(t *testing.T) {
	p := newTestPlanner(9)

	plan := p.BuildCatalogPlan(nil, 10)
	counts := Counts(plan)
	if len(plan) != 10 || counts[CategoryReview] != 2 || counts[CategoryCurrent] != 6 || counts[CategoryChallenge] != 2 {
		t.Fatalf("unexpected generic allocation: %v", counts)
	}
	for _, it := range plan {
		var want string
		var tier difficulty.Tier
		switch it.Category {
		case CategoryReview:
			want, tier = GenericTopics[0], difficulty.Easy
		case CategoryCurrent:
			want, tier = GenericTopics[1], difficulty.Medium
		case CategoryChallenge:
			want, tier = GenericTopics[2], difficulty.Hard
		}
		if it.Topic != want || it.Tier != tier {
			t.Errorf("unexpected slot %+v", it)
		}
	}

	catalog := []string{"u1", "u2", "u3", "u4", "u5"}
	for n := 0; n <= 25; n++ {
		plan := p.BuildCatalogPlan(catalog, n)
		if len(plan) != n {
			t.Fatalf("N=%d: got %d items", n, len(plan))
		}
		if n >= 2 {
			c := Counts(plan)
			if c[CategoryReview] < 1 || c[CategoryCurrent] < 1 {
				t.Errorf("N=%d: expected review and current slots, got %v", n, c)
			}
		}
	}

	single := p.BuildCatalogPlan([]string{"only"}, 5)
	for _, it := range single {
		if it.Topic != "only" {
			t.Errorf("expected single catalog topic everywhere, got %q", it.Topic)
		}
	}
}

func TestSampleDistinct(t *testing.T) {
	p := newTestPlanner(2)
	got := p.sample([]string{"a", "b", "c", "d"}, 3)
	seen := map[string]bool{}
	for _, s := range got {
		if seen[s] {
			t.Fatalf("duplicate %q in sample %v", s, got)
		}
		seen[s] = true
	}
	if len(got) != 3 {
		t.Errorf("expected 3, got %d", len(got))
	}
}
