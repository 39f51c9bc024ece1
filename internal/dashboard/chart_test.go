package dashboard

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/metascope/internal/aggregate"
)

func TestChartSVG(t *testing.T) {
	c := Chart{Title: "Top <Journals>", Bars: []Bar{{Label: "A&B", Value: 1200}, {Label: "C", Value: 3}}, Horizontal: true}
	svg := c.SVG()
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not a complete svg document")
	}
	if strings.Count(svg, "<rect") != 3 { // background + two bars
		t.Fatalf("expected 3 rects, got %d", strings.Count(svg, "<rect"))
	}
	if !strings.Contains(svg, "Top &lt;Journals&gt;") || !strings.Contains(svg, "A&amp;B") {
		t.Fatalf("labels not escaped: %s", svg)
	}
	if !strings.Contains(svg, "1,200") {
		t.Fatalf("counts should be humanized")
	}
}

func TestChartEmpty(t *testing.T) {
	svg := Chart{Title: "Nothing"}.SVG()
	if !strings.Contains(svg, "no data") {
		t.Fatalf("empty chart should say so: %s", svg)
	}
}

func TestNiceStep(t *testing.T) {
	cases := map[int]int{1: 1, 5: 1, 6: 2, 11: 2, 12: 5, 29: 5, 30: 10, 1000: 200}
	for in, want := range cases {
		if got := niceStep(in); got != want {
			t.Errorf("niceStep(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBarsKeepOrder(t *testing.T) {
	years := YearBars([]aggregate.YearCount{{Year: 2019, Count: 1}, {Year: 2020, Count: 4}})
	if years[0].Label != "2019" || years[1].Value != 4 {
		t.Fatalf("year bars = %v", years)
	}
	counts := CountBars([]aggregate.CategoryCount{{Value: "PMC", Count: 3}, {Value: "WHO", Count: 1}})
	if counts[0].Label != "PMC" || counts[1].Label != "WHO" {
		t.Fatalf("count bars = %v", counts)
	}
}

func TestWordCloud(t *testing.T) {
	words := []aggregate.CategoryCount{{Value: "covid", Count: 10}, {Value: "vaccine", Count: 5}, {Value: "spread", Count: 1}}
	svg := WordCloud(words, 800, 400)
	for _, w := range words {
		if !strings.Contains(svg, ">"+w.Value+"</text>") {
			t.Fatalf("word %q not placed", w.Value)
		}
	}
	if !strings.Contains(svg, `font-size="56.0"`) || !strings.Contains(svg, `font-size="12.0"`) {
		t.Fatalf("font sizes should span the range: %s", svg)
	}
	if empty := WordCloud(nil, 0, 0); !strings.Contains(empty, "no words") {
		t.Fatalf("empty cloud: %s", empty)
	}
}

func TestWordCloudNoOverlap(t *testing.T) {
	var words []aggregate.CategoryCount
	for i, w := range strings.Fields("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu") {
		words = append(words, aggregate.CategoryCount{Value: w, Count: 20 - i})
	}
	svg := WordCloud(words, 600, 300)
	if n := strings.Count(svg, "<text"); n == 0 || n > len(words) {
		t.Fatalf("placed %d words", n)
	}
}
