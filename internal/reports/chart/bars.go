// Package chart draws the inline SVG charts of the report pages.
package chart

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Chart defaults.
const (
	DefaultWidth  = 720
	DefaultHeight = 240
	padding       = 28.0
	ticks         = 5
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data")

// Point is one group of the chart: a label and up to two amounts.
type Point struct {
	Label string
	A     decimal.Decimal
	B     decimal.Decimal
}

// Options names the chart and its two series. An empty LabelB draws series A only.
type Options struct {
	Title   string
	Summary string
	LabelA  string
	LabelB  string
	ColorA  string
	ColorB  string
	Width   int
	Height  int
}

// Bars renders a grouped bar chart of non negative amounts. Negative values
// are drawn as zero.
func Bars(points []Point, opts Options) (template.HTML, error) {
	if len(points) == 0 {
		return "", ErrNoData
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	plotW := float64(width) - 2*padding
	plotH := float64(height) - 2*padding
	if plotW <= 0 || plotH <= 0 {
		return "", fmt.Errorf("chart: viewport %dx%d too small", width, height)
	}
	two := opts.LabelB != ""
	colorA := or(opts.ColorA, "#7c3aed")
	colorB := or(opts.ColorB, "#f59e0b")

	maxVal := 0.0
	for _, p := range points {
		maxVal = math.Max(maxVal, value(p.A))
		if two {
			maxVal = math.Max(maxVal, value(p.B))
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}
	scale := plotH / maxVal
	bottom := padding + plotH
	group := plotW / float64(len(points))
	bar := group / 3
	if !two {
		bar = group / 2
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="%s" class="chart">`,
		width, height, esc(or(opts.Title, "Graphique")))
	if opts.Summary != "" {
		fmt.Fprintf(&b, `<desc>%s</desc>`, esc(opts.Summary))
	}
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / ticks
		y := bottom - ratio*plotH
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="grid"></line>`, padding, y, padding+plotW, y)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" class="tick" text-anchor="end">%s</text>`, padding-4, y+3, Tick(maxVal*ratio))
	}
	for i, p := range points {
		x := padding + float64(i)*group
		if two {
			rect(&b, x+bar*0.4, bar, value(p.A)*scale, bottom, colorA, opts.LabelA+" "+p.Label)
			rect(&b, x+bar*1.6, bar, value(p.B)*scale, bottom, colorB, opts.LabelB+" "+p.Label)
		} else {
			rect(&b, x+bar/2, bar, value(p.A)*scale, bottom, colorA, p.Label)
		}
		if labelEvery(len(points), i) {
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" class="tick" text-anchor="middle">%s</text>`, x+group/2, bottom+14, esc(p.Label))
		}
	}
	legend(&b, opts.LabelA, colorA, padding)
	if two {
		legend(&b, opts.LabelB, colorB, padding+120)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func rect(b *strings.Builder, x, w, h, bottom float64, color, label string) {
	fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s</title></rect>`,
		x, bottom-h, w, h, color, esc(label))
}

func legend(b *strings.Builder, label, color string, x float64) {
	if label == "" {
		return
	}
	fmt.Fprintf(b, `<rect x="%.1f" y="6" width="10" height="10" fill="%s"></rect>`, x, color)
	fmt.Fprintf(b, `<text x="%.1f" y="15" class="legend">%s</text>`, x+14, esc(label))
}

// labelEvery thins the x axis to about twelve labels.
func labelEvery(n, i int) bool {
	step := int(math.Ceil(float64(n) / 12))
	return step <= 1 || i%step == 0
}

func value(d decimal.Decimal) float64 {
	if d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}

// Tick abbreviates an axis value: 1500 → "1,5k", 2000000 → "2M".
func Tick(v float64) string {
	switch abs := math.Abs(v); {
	case abs >= 1_000_000:
		return trim(v/1_000_000) + "M"
	case abs >= 1_000:
		return trim(v/1_000) + "k"
	}
	return trim(v)
}

func trim(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return strings.Replace(s, ".", ",", 1)
}

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}
