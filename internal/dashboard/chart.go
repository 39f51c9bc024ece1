package dashboard

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/KaramelBytes/metascope/internal/aggregate"
)

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value int
}

// Chart describes a bar chart rendered as standalone SVG.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
	// Horizontal draws bars left to right with labels on the y axis.
	Horizontal bool
	Width      int
	Height     int
}

const (
	barFill   = "#4c72b0"
	axisColor = "#444"
	fontStack = "Helvetica, Arial, sans-serif"
)

// YearBars converts per-year counts to bars in ascending year order.
func YearBars(years []aggregate.YearCount) []Bar {
	out := make([]Bar, len(years))
	for i, y := range years {
		out[i] = Bar{Label: strconv.Itoa(y.Year), Value: y.Count}
	}
	return out
}

// CountBars converts categorical counts to bars, keeping their order.
func CountBars(counts []aggregate.CategoryCount) []Bar {
	out := make([]Bar, len(counts))
	for i, c := range counts {
		out[i] = Bar{Label: c.Value, Value: c.Count}
	}
	return out
}

// SVG renders the chart. An empty chart still renders its frame and title.
func (c Chart) SVG() string {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = 640
	}
	if h <= 0 {
		h = 360
		if c.Horizontal && len(c.Bars) > 8 {
			h = 80 + 28*len(c.Bars)
		}
	}
	maxVal := 0
	for _, b := range c.Bars {
		maxVal = max(maxVal, b.Value)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="%s" font-size="12">`, w, h, w, h, fontStack)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#fff"/>`, w, h)
	fmt.Fprintf(&sb, `<text x="%d" y="22" text-anchor="middle" font-size="15" font-weight="bold">%s</text>`, w/2, esc(c.Title))

	if len(c.Bars) == 0 {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="middle" fill="#888">no data</text>`, w/2, h/2)
		sb.WriteString(`</svg>`)
		return sb.String()
	}
	if c.Horizontal {
		c.horizontal(&sb, w, h, maxVal)
	} else {
		c.vertical(&sb, w, h, maxVal)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func (c Chart) vertical(sb *strings.Builder, w, h, maxVal int) {
	left, right, top, bottom := 60, 20, 40, 70
	plotW := float64(w - left - right)
	plotH := float64(h - top - bottom)
	slot := plotW / float64(len(c.Bars))
	barW := slot * 0.7

	axes(sb, left, top, w-right, h-bottom)
	for i, b := range c.Bars {
		bh := 0.0
		if maxVal > 0 {
			bh = plotH * float64(b.Value) / float64(maxVal)
		}
		x := float64(left) + slot*float64(i) + (slot-barW)/2
		y := float64(h-bottom) - bh
		fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %s</title></rect>`,
			x, y, barW, bh, barFill, esc(b.Label), humanize.Comma(int64(b.Value)))
		lx := x + barW/2
		ly := float64(h-bottom) + 14
		fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" text-anchor="end" transform="rotate(-45 %.1f %.1f)">%s</text>`,
			lx, ly, lx, ly, esc(shorten(b.Label, 18)))
	}
	ticks(sb, left, top, h-bottom, maxVal, false, w-right)
	fmt.Fprintf(sb, `<text x="%d" y="%d" text-anchor="middle">%s</text>`, left+int(plotW)/2, h-8, esc(c.XLabel))
	fmt.Fprintf(sb, `<text x="14" y="%d" text-anchor="middle" transform="rotate(-90 14 %d)">%s</text>`, top+int(plotH)/2, top+int(plotH)/2, esc(c.YLabel))
}

func (c Chart) horizontal(sb *strings.Builder, w, h, maxVal int) {
	left, right, top, bottom := 200, 30, 40, 50
	plotW := float64(w - left - right)
	plotH := float64(h - top - bottom)
	slot := plotH / float64(len(c.Bars))
	barH := slot * 0.7

	axes(sb, left, top, w-right, h-bottom)
	for i, b := range c.Bars {
		bw := 0.0
		if maxVal > 0 {
			bw = plotW * float64(b.Value) / float64(maxVal)
		}
		y := float64(top) + slot*float64(i) + (slot-barH)/2
		fmt.Fprintf(sb, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %s</title></rect>`,
			left, y, bw, barH, barFill, esc(b.Label), humanize.Comma(int64(b.Value)))
		fmt.Fprintf(sb, `<text x="%d" y="%.1f" text-anchor="end" dominant-baseline="middle">%s</text>`,
			left-6, y+barH/2, esc(shorten(b.Label, 30)))
	}
	ticks(sb, left, top, h-bottom, maxVal, true, w-right)
	fmt.Fprintf(sb, `<text x="%d" y="%d" text-anchor="middle">%s</text>`, left+int(plotW)/2, h-8, esc(c.XLabel))
	fmt.Fprintf(sb, `<text x="14" y="%d" text-anchor="middle" transform="rotate(-90 14 %d)">%s</text>`, top+int(plotH)/2, top+int(plotH)/2, esc(c.YLabel))
}

func axes(sb *strings.Builder, x0, y0, x1, y1 int) {
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`, x0, y0, x0, y1, axisColor)
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`, x0, y1, x1, y1, axisColor)
}

// ticks draws up to five value gridlines along the value axis.
func ticks(sb *strings.Builder, left, top, baseline, maxVal int, horizontal bool, rightEdge int) {
	if maxVal <= 0 {
		return
	}
	step := niceStep(maxVal)
	for v := step; v <= maxVal; v += step {
		frac := float64(v) / float64(maxVal)
		if horizontal {
			x := float64(left) + frac*float64(rightEdge-left)
			fmt.Fprintf(sb, `<text x="%.1f" y="%d" text-anchor="middle" fill="%s">%s</text>`, x, baseline+16, axisColor, humanize.Comma(int64(v)))
			continue
		}
		y := float64(baseline) - frac*float64(baseline-top)
		fmt.Fprintf(sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ddd"/>`, left, y, rightEdge, y)
		fmt.Fprintf(sb, `<text x="%d" y="%.1f" text-anchor="end" dominant-baseline="middle" fill="%s">%s</text>`, left-6, y, axisColor, humanize.Comma(int64(v)))
	}
}

// niceStep picks a 1/2/5 x 10^k step giving at most five ticks.
func niceStep(maxVal int) int {
	step := 1
	for {
		for _, m := range []int{1, 2, 5} {
			if maxVal/(step*m) <= 5 {
				return step * m
			}
		}
		step *= 10
	}
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func esc(s string) string { return html.EscapeString(s) }
