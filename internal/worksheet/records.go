package worksheet

import (
	"strings"

	"github.com/abhisek/mathdaily/internal/difficulty"
	"github.com/abhisek/mathdaily/internal/planner"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/store"
)

func toRecords(studentID string, unitID *int, problems []problemgen.Problem) []store.ProblemRecord {
	recs := make([]store.ProblemRecord, 0, len(problems))
	for _, p := range problems {
		recs = append(recs, store.ProblemRecord{
			ID:          p.ID,
			StudentID:   studentID,
			UnitID:      unitID,
			Topic:       p.Topic,
			Tier:        int(p.Tier),
			Category:    string(p.Category),
			Question:    p.Question,
			Options:     p.Options,
			Answer:      p.Answer,
			Explanation: p.Explanation,
			Diagram:     p.Diagram,
		})
	}
	return recs
}

func fromRecords(recs []store.ProblemRecord) []problemgen.Problem {
	out := make([]problemgen.Problem, 0, len(recs))
	for _, r := range recs {
		out = append(out, problemgen.Problem{
			ID:          r.ID,
			Topic:       r.Topic,
			Tier:        difficulty.Tier(r.Tier),
			Category:    planner.Category(r.Category),
			Question:    r.Question,
			Options:     r.Options,
			Answer:      r.Answer,
			Explanation: r.Explanation,
			Diagram:     r.Diagram,
		})
	}
	return out
}

// dedupe trims topics and drops blanks and repeats, keeping first
// occurrences in order.
func dedupe(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
