package explore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/dataset"
)

const scenarioCSV = "title,abstract,publish_time,journal,source_x\n" +
	"A,x y,2020-01-01,J1,PMC\n" +
	",z,2021-01-01,J2,PMC\n" +
	"B,w w w,bad-date,J1,Medline\n"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "metadata.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadAndAggregate(t *testing.T) {
	ds, err := Load(writeFile(t, scenarioCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 3 || len(ds.Cleaned) != 2 {
		t.Fatalf("records=%d cleaned=%d", len(ds.Records), len(ds.Cleaned))
	}
	if ds.Dropped() != 1 || ds.MissingYear() != 1 {
		t.Fatalf("dropped=%d missingYear=%d", ds.Dropped(), ds.MissingYear())
	}
	v := Aggregate(ds.Cleaned, DefaultOptions())
	want := Views{
		Years:    []aggregate.YearCount{{Year: 2020, Count: 1}},
		Journals: []aggregate.CategoryCount{{Value: "J1", Count: 2}},
		Words:    []aggregate.CategoryCount{{Value: "b", Count: 1}},
		Sources:  []aggregate.CategoryCount{{Value: "Medline", Count: 1}, {Value: "PMC", Count: 1}},
	}
	// "A" lower-cases to the stopword "a"
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("views (-want +got):\n%s", diff)
	}
}

func TestDefaultSelectionClamps(t *testing.T) {
	ds, err := Load(writeFile(t, scenarioCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rng, ok := ds.DefaultSelection(aggregate.DefaultRange)
	if !ok || rng != (aggregate.YearRange{Lo: 2020, Hi: 2020}) {
		t.Fatalf("DefaultSelection = %v,%v", rng, ok)
	}
	sel := ds.Select(rng)
	if len(sel.Records) != 1 {
		t.Fatalf("selection = %d records", len(sel.Records))
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := Load(writeFile(t, "title,abstract\nx,y\n")); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}
