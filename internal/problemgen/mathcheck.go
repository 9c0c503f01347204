package problemgen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MathCheckValidator recomputes the answer of bare arithmetic questions
// such as "345 + 278 = ?" or "3/4 + 1/6 의 값은?". Word problems and
// anything else it cannot parse in full pass through silently.
type MathCheckValidator struct{}

func (v *MathCheckValidator) Name() string { return "math-check" }

func (v *MathCheckValidator) Validate(p *Problem) *ValidationError {
	computed, err := computeAnswer(p.Question)
	if err != nil {
		return nil
	}
	claimed, tol, ok := answerValue(p.Answer)
	if !ok {
		return nil
	}
	if math.Abs(computed-claimed) > tol {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %s but answer is %q", formatNumber(computed), p.Answer),
		}
	}
	return nil
}

// questionTail matches what may follow a bare expression.
const questionTail = `\s*(?:=\s*(?:\?|□)?)?\s*(?:의 값은|을 계산하시오|를 계산하시오|은|는)?\s*[?.]?\s*$`

var (
	// Fraction arithmetic: "a/b + c/d" with +, -, ×, ÷.
	fractionArithRe = regexp.MustCompile(`^\s*(-?\d+)\s*/\s*(\d+)\s*([+\-×÷*])\s*(-?\d+)\s*/\s*(\d+)` + questionTail)

	// Integer/decimal arithmetic. "/" is left to the fraction pattern.
	numberArithRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*([+\-×÷*])\s*(-?\d+(?:\.\d+)?)` + questionTail)

	// Answer forms: mixed number ("1 2/4", "1과 1/2"), fraction, decimal.
	mixedAnswerRe    = regexp.MustCompile(`^(-?)(\d+)(?:\s*[과와]\s*|\s+)(\d+)\s*/\s*(\d+)`)
	fractionAnswerRe = regexp.MustCompile(`^(-?\d+)\s*/\s*(\d+)`)
	decimalAnswerRe  = regexp.MustCompile(`^-?\d+(?:\.(\d+))?`)
)

// Words after the leading number that mean the answer has a second part.
var compoundAnswerMarkers = []string{"나머지", "…", "...", "과", "와"}

// computeAnswer evaluates a question that consists of a single binary
// operation. It returns an error for anything else.
func computeAnswer(text string) (float64, error) {
	text = strings.ReplaceAll(text, ",", "")
	if m := fractionArithRe.FindStringSubmatch(text); m != nil {
		aN, _ := strconv.ParseFloat(m[1], 64)
		aD, _ := strconv.ParseFloat(m[2], 64)
		bN, _ := strconv.ParseFloat(m[4], 64)
		bD, _ := strconv.ParseFloat(m[5], 64)
		if aD == 0 || bD == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		return applyOp(aN/aD, normalizeOp(m[3]), bN/bD)
	}
	if m := numberArithRe.FindStringSubmatch(text); m != nil {
		a, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, err
		}
		b, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return 0, err
		}
		return applyOp(a, normalizeOp(m[2]), b)
	}
	return 0, fmt.Errorf("not computable")
}

func applyOp(a float64, op string, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("unsupported operator: %s", op)
}

// normalizeOp normalizes multiplication and division symbols.
func normalizeOp(op string) string {
	switch op {
	case "×":
		return "*"
	case "÷":
		return "/"
	default:
		return op
	}
}

// answerValue parses the number an answer starts with, so "623개" and
// "3/4 L" compare by value. tol is half the last digit shown for
// decimals. ok is false when the answer is not a single number, such as
// "3 … 1" or "3 나머지 1".
func answerValue(s string) (value, tol float64, ok bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	tol = 1e-6

	var rest string
	switch {
	case mixedAnswerRe.MatchString(s):
		m := mixedAnswerRe.FindStringSubmatch(s)
		whole, _ := strconv.ParseFloat(m[2], 64)
		num, _ := strconv.ParseFloat(m[3], 64)
		den, _ := strconv.ParseFloat(m[4], 64)
		if den == 0 {
			return 0, 0, false
		}
		value = whole + num/den
		if m[1] == "-" {
			value = -value
		}
		rest = s[len(m[0]):]
	case fractionAnswerRe.MatchString(s):
		m := fractionAnswerRe.FindStringSubmatch(s)
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0, 0, false
		}
		value = num / den
		rest = s[len(m[0]):]
	case decimalAnswerRe.MatchString(s):
		m := decimalAnswerRe.FindStringSubmatch(s)
		v, err := strconv.ParseFloat(m[0], 64)
		if err != nil {
			return 0, 0, false
		}
		value = v
		if digits := len(m[1]); digits > 0 {
			tol = 0.5*math.Pow(10, -float64(digits)) + 1e-9
		}
		rest = s[len(m[0]):]
	default:
		return 0, 0, false
	}

	if strings.ContainsAny(rest, "0123456789") {
		return 0, 0, false
	}
	for _, marker := range compoundAnswerMarkers {
		if strings.Contains(rest, marker) {
			return 0, 0, false
		}
	}
	return value, tol, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
