package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/explore"
	"github.com/KaramelBytes/metascope/internal/utils"
)

// Options controls report contents.
type Options struct {
	explore.Options
	// SampleRows determines how many example rows to include for the selection.
	SampleRows int
	// Range selects the year window for the filtered section. Nil uses the
	// default range clamped to the observed years.
	Range *aggregate.YearRange
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{Options: explore.DefaultOptions(), SampleRows: 5}
}

// Report is a markdown-friendly analysis of a metadata file.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*Profile

	Cleaned     int                  `json:"cleaned"`
	Dropped     int                  `json:"dropped"`
	MissingYear int                  `json:"missing_year"`
	WordCounts  Describe             `json:"abstract_word_count"`
	Bounds      *aggregate.YearRange `json:"year_bounds,omitempty"`
	WordField   aggregate.Field      `json:"word_field"`
	Views       explore.Views        `json:"views"`
	Selection   *SelectionSummary    `json:"selection,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// SelectionSummary describes the records inside the selected year range.
type SelectionSummary struct {
	Range   aggregate.YearRange   `json:"range"`
	Total   int                   `json:"total"`
	Years   []aggregate.YearCount `json:"years"`
	Samples []SampleRow           `json:"samples,omitempty"`
}

// SampleRow is one line of the selection preview.
type SampleRow struct {
	Title             string `json:"title"`
	Journal           string `json:"journal"`
	PublishTime       string `json:"publish_time"`
	AbstractWordCount int    `json:"abstract_word_count"`
}

// NewReport analyzes a loaded dataset.
func NewReport(ds *explore.Dataset, opt Options) *Report {
	if opt.WordField == "" {
		opt.WordField = aggregate.FieldTitle
	}
	rep := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Profile:     ProfileTable(ds.Table),
		Cleaned:     len(ds.Cleaned),
		Dropped:     ds.Dropped(),
		MissingYear: ds.MissingYear(),
		WordField:   opt.WordField,
		Views:       explore.Aggregate(ds.Cleaned, opt.Options),
	}
	wc := make([]float64, len(ds.Cleaned))
	for i, r := range ds.Cleaned {
		wc[i] = float64(r.AbstractWordCount)
	}
	rep.WordCounts = describe(wc)

	bounds, ok := ds.Bounds()
	if !ok {
		rep.Warnings = append(rep.Warnings, "no record has a parseable publish_time; year views are empty")
		return rep
	}
	rep.Bounds = &bounds
	rng := aggregate.ClampRange(bounds, aggregate.DefaultRange)
	if opt.Range != nil {
		rng = *opt.Range
		if rng.Lo < bounds.Lo || rng.Hi > bounds.Hi {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("selected range %d-%d extends beyond observed years %d-%d", rng.Lo, rng.Hi, bounds.Lo, bounds.Hi))
		}
	}
	rep.Selection = Summarize(ds.Select(rng), opt.SampleRows)
	if rep.MissingYear > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d cleaned records have no parseable publish_time and are left out of year views", rep.MissingYear))
	}
	return rep
}

// Summarize builds the preview of a selection, keeping at most sampleRows rows.
func Summarize(sel aggregate.Selection, sampleRows int) *SelectionSummary {
	s := &SelectionSummary{Range: sel.Range, Total: len(sel.Records), Years: sel.Years}
	for _, r := range sel.Records {
		if len(s.Samples) >= sampleRows {
			break
		}
		row := SampleRow{
			Title:             r.Title.Or(""),
			Journal:           r.Journal.Or(""),
			AbstractWordCount: r.AbstractWordCount,
		}
		if p, ok := r.Published.Get(); ok {
			row.PublishTime = p.Format("2006-01-02")
		}
		s.Samples = append(s.Samples, row)
	}
	return s
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) { return utils.PrettyJSON(r) }

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Shape: (%d, %d)\n", r.Rows, len(r.Cols)))
	b.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s, %s (non-null %s, missing %.1f%%)", c.Name, c.Dtype, c.Kind, humanize.Comma(int64(c.NonNull)), missPct))
		switch c.Kind {
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(" — e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(truncate(safeVal(ex), 60))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[MISSING VALUES]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, humanize.Comma(int64(c.Missing))))
	}

	var numeric []ColumnSummary
	for _, c := range r.Cols {
		if c.Stats != nil {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) > 0 {
		b.WriteString("\n[NUMERIC STATISTICS]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, c := range numeric {
			writeDescribeRow(&b, c.Name, *c.Stats)
		}
	}

	b.WriteString("\n[CLEANING]\n")
	b.WriteString(fmt.Sprintf("- kept %s of %s rows with both title and abstract (dropped %s)\n",
		humanize.Comma(int64(r.Cleaned)), humanize.Comma(int64(r.Rows)), humanize.Comma(int64(r.Dropped))))
	b.WriteString(fmt.Sprintf("- rows without a parseable publish_time: %s\n", humanize.Comma(int64(r.MissingYear))))
	if r.Bounds != nil {
		b.WriteString(fmt.Sprintf("- publication years: %d–%d\n", r.Bounds.Lo, r.Bounds.Hi))
	}
	if r.WordCounts.Count > 0 {
		b.WriteString(fmt.Sprintf("- abstract_word_count: mean %.1f, median %.0f, min %.0f, max %.0f\n",
			r.WordCounts.Mean, r.WordCounts.P50, r.WordCounts.Min, r.WordCounts.Max))
	}

	b.WriteString("\n[PUBLICATIONS BY YEAR]\n")
	writeYears(&b, r.Views.Years)

	b.WriteString(fmt.Sprintf("\n[TOP %d JOURNALS]\n", len(r.Views.Journals)))
	writeCounts(&b, r.Views.Journals)

	b.WriteString(fmt.Sprintf("\n[TOP %d WORDS IN %s]\n", len(r.Views.Words), strings.ToUpper(string(r.WordField))))
	if len(r.Views.Words) == 0 {
		b.WriteString("(none)\n")
	}
	for i, w := range r.Views.Words {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", w.Value, w.Count))
	}
	if len(r.Views.Words) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("\n[PAPERS BY SOURCE]\n")
	writeCounts(&b, r.Views.Sources)

	if s := r.Selection; s != nil {
		b.WriteString(fmt.Sprintf("\n[SELECTION %d-%d]\n", s.Range.Lo, s.Range.Hi))
		b.WriteString(fmt.Sprintf("Records: %s\n", humanize.Comma(int64(s.Total))))
		writeYears(&b, s.Years)
		if len(s.Samples) > 0 {
			b.WriteString("\n| title | journal | publish_time | abstract_word_count |\n")
			b.WriteString("| --- | --- | --- | --- |\n")
			for _, row := range s.Samples {
				b.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
					truncate(safeVal(row.Title), 80), safeVal(row.Journal), row.PublishTime, row.AbstractWordCount))
			}
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeDescribeRow(b *strings.Builder, name string, d Describe) {
	std := "n/a"
	if d.Count > 1 {
		std = fmt.Sprintf("%.4g", d.Std)
	}
	b.WriteString(fmt.Sprintf("| %s | %d | %.4g | %s | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
		name, d.Count, d.Mean, std, d.Min, d.P25, d.P50, d.P75, d.Max))
}

func writeYears(b *strings.Builder, years []aggregate.YearCount) {
	if len(years) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, y := range years {
		b.WriteString(fmt.Sprintf("- %d: %s\n", y.Year, humanize.Comma(int64(y.Count))))
	}
}

func writeCounts(b *strings.Builder, counts []aggregate.CategoryCount) {
	if len(counts) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, c := range counts {
		b.WriteString(fmt.Sprintf("- %s: %s\n", safeVal(c.Value), humanize.Comma(int64(c.Count))))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
