// Package aggregate computes the summary views shown for a cleaned collection.
// Each function recomputes its view from scratch and never mutates its input.
package aggregate

import (
	"sort"

	"github.com/KaramelBytes/metascope/internal/cleaning"
	"github.com/KaramelBytes/metascope/internal/dataset"
)

// DefaultTopJournals is the number of journals reported when no limit is configured.
const DefaultTopJournals = 10

// YearCount is the number of records published in a year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// CategoryCount is the frequency of one categorical value.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountsByYear counts records per year, ascending by year. Records without a
// year are left out.
func CountsByYear(records []cleaning.CleanedRecord) []YearCount {
	counts := map[int]int{}
	for _, r := range records {
		if y, ok := r.Year.Get(); ok {
			counts[y]++
		}
	}
	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopJournals returns the k most frequent journals; k <= 0 returns all of them.
// Year presence is irrelevant here: every cleaned record counts.
func TopJournals(records []cleaning.CleanedRecord, k int) []CategoryCount {
	out := valueCounts(records, func(r cleaning.CleanedRecord) dataset.Nullable[string] { return r.Journal })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// CountsBySource counts records per source, most frequent first.
func CountsBySource(records []cleaning.CleanedRecord) []CategoryCount {
	return valueCounts(records, func(r cleaning.CleanedRecord) dataset.Nullable[string] { return r.Source })
}

// valueCounts orders by count descending, then by value so output is
// reproducible. Absent values are not counted.
func valueCounts(records []cleaning.CleanedRecord, pick func(cleaning.CleanedRecord) dataset.Nullable[string]) []CategoryCount {
	counts := map[string]int{}
	for _, r := range records {
		if v, ok := pick(r).Get(); ok {
			counts[v]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}
