package problemgen

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	powerRe = regexp.MustCompile(`\^\{?(-?\d+)\}?`)
	timesRe = regexp.MustCompile(`([0-9A-Za-z)²³⁴⁵⁶⁷⁸⁹])\s*\*\s*([0-9A-Za-z(])`)
)

var superscripts = strings.NewReplacer(
	"0", "⁰", "1", "¹", "2", "²", "3", "³", "4", "⁴",
	"5", "⁵", "6", "⁶", "7", "⁷", "8", "⁸", "9", "⁹", "-", "⁻",
)

// NormalizeNotation rewrites ASCII math into the symbols worksheets are
// printed with: "x^2" becomes "x²" and "3*4" becomes "3 × 4". Markdown
// emphasis ("**") is left alone.
func NormalizeNotation(s string) string {
	s = norm.NFC.String(s)
	s = powerRe.ReplaceAllStringFunc(s, func(m string) string {
		return superscripts.Replace(powerRe.FindStringSubmatch(m)[1])
	})
	for {
		next := timesRe.ReplaceAllString(s, "$1 × $2")
		if next == s {
			return s
		}
		s = next
	}
}

// normalizeProblem applies NormalizeNotation to every text field so the
// answer keeps matching its option.
func normalizeProblem(p *Problem) {
	p.Question = NormalizeNotation(p.Question)
	p.Answer = NormalizeNotation(p.Answer)
	p.Explanation = NormalizeNotation(p.Explanation)
	for i, opt := range p.Options {
		p.Options[i] = NormalizeNotation(opt)
	}
}
