package aggregate

import "github.com/KaramelBytes/metascope/internal/cleaning"

// DefaultRange is the year range selected before any user input.
var DefaultRange = YearRange{Lo: 2020, Hi: 2021}

// YearRange is an inclusive range of publication years.
type YearRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Contains reports whether y lies within the range.
func (r YearRange) Contains(y int) bool { return r.Lo <= y && y <= r.Hi }

// FilterByYearRange keeps records whose year is present and within [lo, hi].
// The result is a fresh slice; records without a year never match.
func FilterByYearRange(records []cleaning.CleanedRecord, lo, hi int) []cleaning.CleanedRecord {
	rng := YearRange{Lo: lo, Hi: hi}
	out := make([]cleaning.CleanedRecord, 0)
	for _, r := range records {
		if y, ok := r.Year.Get(); ok && rng.Contains(y) {
			out = append(out, r)
		}
	}
	return out
}

// YearBounds returns the smallest and largest year present. ok is false when
// no record has a year.
func YearBounds(records []cleaning.CleanedRecord) (bounds YearRange, ok bool) {
	for _, r := range records {
		y, has := r.Year.Get()
		if !has {
			continue
		}
		if !ok {
			bounds = YearRange{Lo: y, Hi: y}
			ok = true
			continue
		}
		bounds.Lo = min(bounds.Lo, y)
		bounds.Hi = max(bounds.Hi, y)
	}
	return bounds, ok
}

// ClampRange fits want inside bounds, swapping the ends if they are reversed.
func ClampRange(bounds, want YearRange) YearRange {
	if want.Lo > want.Hi {
		want.Lo, want.Hi = want.Hi, want.Lo
	}
	clamp := func(v int) int { return max(bounds.Lo, min(bounds.Hi, v)) }
	return YearRange{Lo: clamp(want.Lo), Hi: clamp(want.Hi)}
}

// Selection is a filtered view of the cleaned collection together with its
// per-year counts.
type Selection struct {
	Range   YearRange
	Records []cleaning.CleanedRecord
	Years   []YearCount
}

// Narrow is the call a presentation layer makes when the selected year range
// changes.
func Narrow(records []cleaning.CleanedRecord, lo, hi int) Selection {
	filtered := FilterByYearRange(records, lo, hi)
	return Selection{
		Range:   YearRange{Lo: lo, Hi: hi},
		Records: filtered,
		Years:   CountsByYear(filtered),
	}
}
