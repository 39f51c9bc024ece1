package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/metascope/internal/aggregate"
)

var cloudPalette = []string{"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3", "#937860", "#da8bc3", "#8c8c8c"}

type box struct{ x0, y0, x1, y1 float64 }

func (a box) overlaps(b box) bool {
	return a.x0 < b.x1 && b.x0 < a.x1 && a.y0 < b.y1 && b.y0 < a.y1
}

// WordCloud lays out words on an Archimedean spiral, largest first, with font
// size proportional to frequency. Words that do not fit are skipped.
func WordCloud(words []aggregate.CategoryCount, width, height int) string {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="%s">`, width, height, width, height, fontStack)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#fff"/>`, width, height)
	if len(words) == 0 {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="middle" fill="#888">no words</text></svg>`, width/2, height/2)
		return sb.String()
	}

	lo, hi := words[0].Count, words[0].Count
	for _, w := range words {
		lo = min(lo, w.Count)
		hi = max(hi, w.Count)
	}
	const minFont, maxFont = 12.0, 56.0
	cx, cy := float64(width)/2, float64(height)/2
	placed := make([]box, 0, len(words))

	for i, w := range words {
		size := maxFont
		if hi > lo {
			size = minFont + (maxFont-minFont)*float64(w.Count-lo)/float64(hi-lo)
		}
		// rough glyph metrics; good enough for collision boxes
		bw := 0.6 * size * float64(len([]rune(w.Value)))
		bh := size

		for t := 0.0; t < 60*math.Pi; t += 0.1 {
			r := 4 * t
			x := cx + r*math.Cos(t)*1.6
			y := cy + r*math.Sin(t)
			b := box{x - bw/2, y - bh/2, x + bw/2, y + bh/2}
			if b.x0 < 0 || b.y0 < 0 || b.x1 > float64(width) || b.y1 > float64(height) {
				continue
			}
			if collides(b, placed) {
				continue
			}
			placed = append(placed, b)
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central"><title>%s: %d</title>%s</text>`,
				x, y, size, cloudPalette[i%len(cloudPalette)], esc(w.Value), w.Count, esc(w.Value))
			break
		}
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func collides(b box, placed []box) bool {
	for _, p := range placed {
		if b.overlaps(p) {
			return true
		}
	}
	return false
}
