// Package diagram draws a labelled rectangle, right triangle or circle
// for geometry problems that arrived without a figure. The output is
// illustrative only: numbers are taken from the question text and are
// never checked against the answer.
package diagram

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Kind is the archetype chosen for a problem.
type Kind int

const (
	None Kind = iota
	Rectangle
	Triangle
	Circle
)

func (k Kind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case Triangle:
		return "triangle"
	case Circle:
		return "circle"
	}
	return "none"
}

// Canvas size and drawing limits.
const (
	CanvasWidth  = 300
	CanvasHeight = 250

	maxDim      = 180.0
	singleDim   = 120.0
	maxAspect   = 3.0
	clampAspect = 2.5
	unit        = "cm"
)

const (
	strokeColor = "#334155"
	fillColor   = "#f8fafc"
	textColor   = "#0f172a"
	dimColor    = "#64748b"
)

// Keyword lists are checked in this order; the first match wins.
var (
	rectangleKeywords = []string{"직사각형", "사각형", "rectangle", "square"}
	triangleKeywords  = []string{"삼각형", "triangle"}
	circleKeywords    = []string{"원의", "원주", "반지름", "지름", "circle", "radius"}
)

// circleParticles may follow a standalone 원 ("원을 그리시오").
const circleParticles = "을은이에과와"

var integerRe = regexp.MustCompile(`\d+`)

// Shape picks the archetype for topic and question.
func Shape(topic, question string) Kind {
	has := func(keywords []string) bool {
		t, q := strings.ToLower(topic), strings.ToLower(question)
		for _, k := range keywords {
			if strings.Contains(t, k) || strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
	switch {
	case has(rectangleKeywords):
		return Rectangle
	case has(triangleKeywords):
		return Triangle
	case has(circleKeywords), standaloneCircle(topic), standaloneCircle(question):
		return Circle
	}
	return None
}

// standaloneCircle reports whether s uses 원 as a word on its own. Money
// ("500원") and compounds ("동물원", "원래") do not count.
func standaloneCircle(s string) bool {
	runes := []rune(s)
	for i, r := range runes {
		if r != '원' {
			continue
		}
		prev := i - 1
		for prev >= 0 && unicode.IsSpace(runes[prev]) {
			prev--
		}
		if prev >= 0 && unicode.IsDigit(runes[prev]) {
			continue
		}
		if i > 0 && isHangul(runes[i-1]) {
			continue
		}
		if i+1 < len(runes) && isHangul(runes[i+1]) && !strings.ContainsRune(circleParticles, runes[i+1]) {
			continue
		}
		return true
	}
	return false
}

func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// Synthesize returns SVG markup on a 300x250 canvas, or "" when the text
// names no supported shape. It is deterministic.
func Synthesize(topic, question string) string {
	kind := Shape(topic, question)
	if kind == None {
		return ""
	}

	nums := extractIntegers(question, 2)
	w, h := dimensions(nums)

	widthLabel, heightLabel := "a", "b"
	if len(nums) > 0 {
		widthLabel = strconv.Itoa(nums[0]) + unit
	}
	if len(nums) > 1 {
		heightLabel = strconv.Itoa(nums[1]) + unit
	}

	cx, cy := float64(CanvasWidth)/2, float64(CanvasHeight)/2
	f := frame{x: cx - w/2, y: cy - h/2, w: w, h: h, cx: cx, cy: cy}

	var b strings.Builder
	writeHeader(&b)
	switch kind {
	case Rectangle:
		f.rectangle(&b, widthLabel, heightLabel)
	case Triangle:
		f.triangle(&b, widthLabel, heightLabel)
	case Circle:
		f.circle(&b, widthLabel)
	}
	b.WriteString("</svg>")
	return b.String()
}

func extractIntegers(text string, limit int) []int {
	var out []int
	for _, m := range integerRe.FindAllString(text, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

// dimensions scales the first two numbers to the canvas, keeping neither
// side more than 3x the other.
func dimensions(nums []int) (w, h float64) {
	switch len(nums) {
	case 0:
		return 160, 100
	case 1:
		return singleDim, singleDim
	}

	wr, hr := float64(nums[0]), float64(nums[1])
	if wr > hr*maxAspect {
		wr = hr * clampAspect
	}
	if hr > wr*maxAspect {
		hr = wr * clampAspect
	}
	largest := math.Max(wr, hr)
	if largest <= 0 {
		return singleDim, singleDim
	}
	return wr / largest * maxDim, hr / largest * maxDim
}

type frame struct {
	x, y, w, h float64
	cx, cy     float64
}

func writeHeader(b *strings.Builder) {
	fmt.Fprintf(b, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, CanvasWidth, CanvasHeight)
	fmt.Fprintf(b, `<defs>`+
		`<marker id="arrow-start" markerWidth="10" markerHeight="10" refX="0" refY="3" orient="auto" markerUnits="strokeWidth">`+
		`<path d="M9,0 L0,3 L9,6" fill="none" stroke="%[1]s" stroke-width="1.5"/></marker>`+
		`<marker id="arrow-end" markerWidth="10" markerHeight="10" refX="10" refY="3" orient="auto" markerUnits="strokeWidth">`+
		`<path d="M0,0 L10,3 L0,6" fill="none" stroke="%[1]s" stroke-width="1.5"/></marker>`+
		`</defs>`, dimColor)
}

func (f frame) rectangle(b *strings.Builder, widthLabel, heightLabel string) {
	x, y, w, h := f.x, f.y, f.w, f.h
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="#000" opacity="0.1" rx="2"/>`, n(x+3), n(y+3), n(w), n(h))
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="2.5" rx="2"/>`,
		n(x), n(y), n(w), n(h), fillColor, strokeColor)

	// Right-angle marks in every corner.
	corners := [][4]float64{
		{x + 15, y, x, y + 15},
		{x + w - 15, y, x + w, y + 15},
		{x + 15, y + h, x, y + h - 15},
		{x + w - 15, y + h, x + w, y + h - 15},
	}
	for _, c := range corners {
		fmt.Fprintf(b, `<path d="M%s,%s L%s,%s L%s,%s" fill="none" stroke="%s" stroke-width="1" opacity="0.5"/>`,
			n(c[0]), n(c[1]), n(c[0]), n(c[3]), n(c[2]), n(c[3]), strokeColor)
	}

	f.horizontalDimension(b, y-15, y-5, y-25, f.cx, y-25, widthLabel)
	f.verticalDimension(b, heightLabel)
}

func (f frame) triangle(b *strings.Builder, widthLabel, heightLabel string) {
	x, y, w, h := f.x, f.y, f.w, f.h
	fmt.Fprintf(b, `<polygon points="%s,%s %s,%s %s,%s" fill="#000" opacity="0.1"/>`,
		n(x+3), n(y+h+3), n(x+w+3), n(y+h+3), n(x+3), n(y+3))
	fmt.Fprintf(b, `<polygon points="%s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="2.5" stroke-linejoin="round"/>`,
		n(x), n(y+h), n(x+w), n(y+h), n(x), n(y), fillColor, strokeColor)
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="15" height="15" fill="none" stroke="%s" stroke-width="1.5"/>`,
		n(x), n(y+h-15), strokeColor)

	f.horizontalDimension(b, y+h+15, y+h+5, y+h+25, f.cx, y+h+40, widthLabel)
	f.verticalDimension(b, heightLabel)
}

func (f frame) circle(b *strings.Builder, radiusLabel string) {
	r := math.Min(f.w, f.h) / 2
	cx, cy := f.cx, f.cy
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="2.5"/>`, n(cx), n(cy), n(r), fillColor, strokeColor)
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="3" fill="%s"/>`, n(cx), n(cy), strokeColor)
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1.5" stroke-dasharray="4,2"/>`,
		n(cx), n(cy), n(cx+r), n(cy), strokeColor)
	writeLabel(b, cx+r/2, cy-10, "middle", "r = "+radiusLabel)
}

// horizontalDimension draws an arrowed line at lineY with dashed
// extension lines from extFrom to extTo and a label at (labelX, labelY).
func (f frame) horizontalDimension(b *strings.Builder, lineY, extFrom, extTo, labelX, labelY float64, label string) {
	x, w := f.x, f.w
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1.5" marker-start="url(#arrow-start)" marker-end="url(#arrow-end)"/>`,
		n(x), n(lineY), n(x+w), n(lineY), dimColor)
	for _, ex := range []float64{x, x + w} {
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="2,2"/>`,
			n(ex), n(extFrom), n(ex), n(extTo), dimColor)
	}
	writeLabel(b, labelX, labelY, "middle", label)
}

func (f frame) verticalDimension(b *strings.Builder, label string) {
	x, y, h := f.x, f.y, f.h
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1.5" marker-start="url(#arrow-start)" marker-end="url(#arrow-end)"/>`,
		n(x-15), n(y), n(x-15), n(y+h), dimColor)
	for _, ey := range []float64{y, y + h} {
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="2,2"/>`,
			n(x-5), n(ey), n(x-25), n(ey), dimColor)
	}
	writeLabel(b, x-35, f.cy+5, "end", label)
}

func writeLabel(b *strings.Builder, x, y float64, anchor, text string) {
	fmt.Fprintf(b, `<text x="%s" y="%s" font-family="sans-serif" font-weight="bold" font-size="14" text-anchor="%s" fill="%s">%s</text>`,
		n(x), n(y), anchor, textColor, text)
}

// n formats a coordinate with at most two decimals.
func n(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
