// Package explore composes the load, clean and aggregate stages into a single
// run over a metadata file.
package explore

import (
	"fmt"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/cleaning"
	"github.com/KaramelBytes/metascope/internal/dataset"
)

// Options controls the size and source of the aggregate views.
type Options struct {
	TopJournals int
	TopWords    int
	WordField   aggregate.Field
}

// DefaultOptions returns 10 journals and 50 title words.
func DefaultOptions() Options {
	return Options{
		TopJournals: aggregate.DefaultTopJournals,
		TopWords:    aggregate.DefaultTopWords,
		WordField:   aggregate.FieldTitle,
	}
}

// Dataset is the loaded table plus its cleaned records. It is never modified
// after Load returns.
type Dataset struct {
	Table   *dataset.Table
	Records []dataset.Record
	Cleaned []cleaning.CleanedRecord
}

// Views bundles the four aggregate projections of a record collection.
type Views struct {
	Years    []aggregate.YearCount     `json:"years"`
	Journals []aggregate.CategoryCount `json:"journals"`
	Words    []aggregate.CategoryCount `json:"words"`
	Sources  []aggregate.CategoryCount `json:"sources"`
}

// Load reads and cleans the metadata file at path. Any failure aborts the run.
func Load(path string) (*Dataset, error) {
	tbl, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	return FromTable(tbl)
}

// FromTable cleans an already loaded table.
func FromTable(tbl *dataset.Table) (*Dataset, error) {
	recs, err := tbl.Records()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tbl.Name, err)
	}
	return &Dataset{
		Table:   tbl,
		Records: recs,
		Cleaned: cleaning.Clean(recs),
	}, nil
}

// Dropped is the number of records removed by the completeness filter.
func (d *Dataset) Dropped() int { return len(d.Records) - len(d.Cleaned) }

// MissingYear counts cleaned records whose publish time could not be parsed.
func (d *Dataset) MissingYear() int {
	n := 0
	for _, r := range d.Cleaned {
		if !r.Year.Valid() {
			n++
		}
	}
	return n
}

// Bounds returns the observed year range of the cleaned records.
func (d *Dataset) Bounds() (aggregate.YearRange, bool) {
	return aggregate.YearBounds(d.Cleaned)
}

// Aggregate computes the four views over records.
func Aggregate(records []cleaning.CleanedRecord, opt Options) Views {
	return Views{
		Years:    aggregate.CountsByYear(records),
		Journals: aggregate.TopJournals(records, opt.TopJournals),
		Words:    aggregate.TopWords(records, opt.WordField, opt.TopWords),
		Sources:  aggregate.CountsBySource(records),
	}
}

// Select narrows the cleaned records to a year range. The range is used as
// given; callers that take user input clamp it first.
func (d *Dataset) Select(rng aggregate.YearRange) aggregate.Selection {
	return aggregate.Narrow(d.Cleaned, rng.Lo, rng.Hi)
}

// DefaultSelection returns the initial range clamped to the observed years.
// ok is false when no record carries a year.
func (d *Dataset) DefaultSelection(want aggregate.YearRange) (aggregate.YearRange, bool) {
	b, ok := d.Bounds()
	if !ok {
		return aggregate.YearRange{}, false
	}
	return aggregate.ClampRange(b, want), true
}
