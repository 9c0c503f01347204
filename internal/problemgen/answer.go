package problemgen

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CheckAnswer compares a submitted answer against the problem's answer.
// Returns true if the answer is correct.
//
// Normalization rules:
// - Whitespace is trimmed and text is NFC-normalized
// - Comparison is case-insensitive
// - An option index (1-4) or letter (A-D) selects that option unless it
//   is itself the text of an option
// - Equivalent fractions and decimals match ("2/4" matches "1/2" and "0.5")
func CheckAnswer(submitted string, p *Problem) bool {
	submitted = norm.NFC.String(strings.TrimSpace(submitted))
	if submitted == "" || p == nil {
		return false
	}
	answer := norm.NFC.String(strings.TrimSpace(p.Answer))

	// Option text wins over an index reading so "3" picks the option "3".
	for _, opt := range p.Options {
		if strings.EqualFold(norm.NFC.String(strings.TrimSpace(opt)), submitted) {
			return strings.EqualFold(submitted, answer)
		}
	}
	if idx, ok := optionIndex(submitted, len(p.Options)); ok {
		return strings.EqualFold(norm.NFC.String(strings.TrimSpace(p.Options[idx])), answer)
	}
	if strings.EqualFold(submitted, answer) {
		return true
	}

	a, err := normalizeNumber(submitted)
	if err != nil {
		return false
	}
	b, err := normalizeNumber(answer)
	if err != nil {
		return false
	}
	return a == b
}

// optionIndex maps "1".."4" and "A".."D" to a zero-based option index.
func optionIndex(s string, n int) (int, bool) {
	if idx, err := strconv.Atoi(s); err == nil && idx >= 1 && idx <= n {
		return idx - 1, true
	}
	if len(s) == 1 {
		c := s[0] | 0x20
		if c >= 'a' && int(c-'a') < n {
			return int(c - 'a'), true
		}
	}
	return 0, false
}

// normalizeNumber reduces integers, decimals and fractions to a canonical
// "num/den" form.
func normalizeNumber(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	if strings.Contains(s, "/") {
		num, den, err := parseFraction(s)
		if err != nil {
			return "", err
		}
		return reduce(num, den)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number: %w", err)
	}
	// Scale decimals to an integer fraction; six places is enough for
	// worksheet answers.
	const scale = 1_000_000
	return reduce(int64(f*scale+sign(f)*0.5), scale)
}

func reduce(num, den int64) (string, error) {
	if den == 0 {
		return "", fmt.Errorf("zero denominator")
	}
	// Normalize sign: negative sign on numerator only.
	if den < 0 {
		num = -num
		den = -den
	}
	g := gcd(abs(num), den)
	if g == 0 {
		g = 1
	}
	return fmt.Sprintf("%d/%d", num/g, den/g), nil
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// abs returns the absolute value of n.
func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
