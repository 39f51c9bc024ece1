package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/cleaning"
	"github.com/KaramelBytes/metascope/internal/dataset"
)

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`  // numeric|datetime|categorical|text|empty
	Dtype   string `json:"dtype"` // int64|float64|object
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`
	// Numeric describe(); only set when Dtype is int64 or float64.
	Stats *Describe `json:"stats,omitempty"`
	// Categorical top values
	TopValues    []aggregate.CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string                  `json:"example_texts,omitempty"`
}

// Describe mirrors the numeric summary block of a dataframe describe().
type Describe struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// Profile is an overview of a raw table: shape, per-column types, missing
// values and numeric statistics.
type Profile struct {
	Name string          `json:"name"`
	Rows int             `json:"rows"`
	Cols []ColumnSummary `json:"columns"`
}

const (
	maxCategories   = 10000
	maxCategoryLen  = 64
	topValuesPerCol = 8
)

// ProfileTable summarizes every column of t.
func ProfileTable(t *dataset.Table) *Profile {
	rows, ncol := t.Shape()
	p := &Profile{Name: t.Name, Rows: rows, Cols: make([]ColumnSummary, 0, ncol)}
	for j := 0; j < ncol; j++ {
		p.Cols = append(p.Cols, profileColumn(t, j))
	}
	return p
}

func profileColumn(t *dataset.Table, j int) ColumnSummary {
	s := ColumnSummary{Name: safeName(t.Header[j])}
	var nums []float64
	var numCnt, dtCnt, txtCnt int
	var exText []string
	integral := true
	cats := make(map[string]int)
	for i := range t.Rows {
		v, ok := t.Cell(i, j).Get()
		if !ok {
			s.Missing++
			continue
		}
		s.NonNull++
		v = strings.TrimSpace(v)
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			numCnt++
			nums = append(nums, x)
			if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
				integral = false
			}
			continue
		}
		if cleaning.ParseDate(dataset.Some(v)).Valid() {
			dtCnt++
		}
		txtCnt++
		if len(cats) <= maxCategories && len(v) <= maxCategoryLen {
			cats[v]++
		}
		if len(exText) < 3 {
			exText = append(exText, v)
		}
	}

	switch {
	case s.NonNull == 0:
		s.Dtype = "float64"
	case txtCnt > 0:
		s.Dtype = "object"
	case integral && s.Missing == 0:
		s.Dtype = "int64"
	default:
		s.Dtype = "float64"
	}
	if s.Dtype != "object" && len(nums) > 0 {
		d := describe(nums)
		s.Stats = &d
	}

	// Decide kind by predominant parsed type
	textOnly := txtCnt - dtCnt
	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case numCnt >= dtCnt && numCnt >= textOnly:
		s.Kind = "numeric"
	case dtCnt >= textOnly:
		s.Kind = "datetime"
	case len(cats) > 0 && len(cats) <= max(20, txtCnt/2):
		s.Kind = "categorical"
		tops := make([]aggregate.CategoryCount, 0, len(cats))
		for k, v := range cats {
			tops = append(tops, aggregate.CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > topValuesPerCol {
			tops = tops[:topValuesPerCol]
		}
		s.TopValues = tops
		s.Unique = len(cats)
	default:
		s.Kind = "text"
		s.ExampleTexts = exText
	}
	return s
}

// describe computes count, mean, sample std, min, quartiles and max.
func describe(vals []float64) Describe {
	d := Describe{Count: len(vals)}
	if len(vals) == 0 {
		return d
	}
	// Welford update
	var mean, m2 float64
	for i, x := range vals {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	d.Mean = mean
	if len(vals) > 1 {
		d.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	d.Min = cp[0]
	d.Max = cp[len(cp)-1]
	d.P25 = quantile(cp, 0.25)
	d.P50 = quantile(cp, 0.5)
	d.P75 = quantile(cp, 0.75)
	return d
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
