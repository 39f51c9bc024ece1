// Package cleaning turns raw metadata records into analysis-ready records:
// incomplete rows are dropped, publish dates are parsed and abstract lengths
// are measured. Every function here is pure.
package cleaning

import (
	"strings"
	"time"

	"github.com/KaramelBytes/metascope/internal/dataset"
)

// CleanedRecord is a record that passed the completeness filter. Title and
// Abstract are always present.
type CleanedRecord struct {
	dataset.Record
	Published         dataset.Nullable[time.Time]
	Year              dataset.Nullable[int]
	AbstractWordCount int
}

// FilterComplete keeps records whose title and abstract are both present,
// preserving input order.
func FilterComplete(records []dataset.Record) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if r.Title.Valid() && r.Abstract.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// Clean filters incomplete records and derives the publication date, year and
// abstract word count of the rest.
func Clean(records []dataset.Record) []CleanedRecord {
	kept := FilterComplete(records)
	out := make([]CleanedRecord, len(kept))
	for i, r := range kept {
		published := ParseDate(r.PublishTime)
		out[i] = CleanedRecord{
			Record:            r,
			Published:         published,
			Year:              yearOf(published),
			AbstractWordCount: CountWords(r.Abstract),
		}
	}
	return out
}

// CountWords counts whitespace-delimited tokens. Absent text counts as zero.
func CountWords(text dataset.Nullable[string]) int {
	s, ok := text.Get()
	if !ok {
		return 0
	}
	return len(strings.Fields(s))
}

// ParseYear extracts the year from a loosely formatted date.
func ParseYear(text dataset.Nullable[string]) dataset.Nullable[int] {
	return yearOf(ParseDate(text))
}

func yearOf(t dataset.Nullable[time.Time]) dataset.Nullable[int] {
	v, ok := t.Get()
	if !ok {
		return dataset.None[int]()
	}
	return dataset.Some(v.Year())
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01",
	"2006/01",
	"2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006 Jan 2",
	"2006 Jan",
	"2006 January 2",
	"2006 January",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2006",
	"January 2006",
}

// ParseDate tries each known layout in turn. Unparseable or absent input
// yields an absent date, never an error.
func ParseDate(text dataset.Nullable[string]) dataset.Nullable[time.Time] {
	s, ok := text.Get()
	if !ok {
		return dataset.None[time.Time]()
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return dataset.None[time.Time]()
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return dataset.Some(t)
		}
	}
	return dataset.None[time.Time]()
}
