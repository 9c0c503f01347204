package problemgen

import (
	"fmt"
	"strings"
)

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "없음" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "없음"
	}

	// Prior questions arrive newest first; keep the first N.
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[:max]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(strings.Fields(q), " "))
	}
	return strings.TrimRight(b.String(), "\n")
}
