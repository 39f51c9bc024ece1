package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/analysis"
	"github.com/KaramelBytes/metascope/internal/explore"
	"github.com/KaramelBytes/metascope/internal/utils"
)

var (
	anaOutputPath  string
	anaJSON        bool
	anaPretty      bool
	anaTopJournals int
	anaTopWords    int
	anaWordField   string
	anaSampleRows  int
	anaYearFrom    int
	anaYearTo      int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Load, clean and summarize a metadata CSV",
	Long: `Analyze a paper-metadata CSV and print a report: shape and schema, missing
values, numeric statistics, cleaning results, publications by year, top
journals, top title words, papers by source and a year-range selection.

When no file is given the configured data_path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ExpandHome(dataPath(args))
		if err != nil {
			return err
		}
		if anaJSON && anaPretty {
			return fmt.Errorf("--json and --pretty cannot be combined")
		}
		opt, err := reportOptions(cmd)
		if err != nil {
			return err
		}
		ds, err := loadDataset(path)
		if err != nil {
			return err
		}
		opt.Range = selectedRange(cmd, ds)

		rep := analysis.NewReport(ds, opt)
		for _, w := range rep.Warnings {
			logger.Warn(w, zap.String("run_id", rep.RunID))
		}
		out, err := renderReport(rep, anaJSON, anaPretty)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

func reportOptions(cmd *cobra.Command) (analysis.Options, error) {
	eo, err := exploreOptions(cmd, anaTopJournals, anaTopWords, anaWordField)
	if err != nil {
		return analysis.Options{}, err
	}
	n, err := sampleRows(cmd, anaSampleRows)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{Options: eo, SampleRows: n}, nil
}

// selectedRange uses the explicit --year-from/--year-to window as given, or
// the configured default clamped to the observed years. Nil means the data
// has no years at all.
func selectedRange(cmd *cobra.Command, ds *explore.Dataset) *aggregate.YearRange {
	s := settings()
	want := aggregate.YearRange{Lo: s.DefaultYearFrom, Hi: s.DefaultYearTo}
	fromSet, toSet := cmd.Flags().Changed("year-from"), cmd.Flags().Changed("year-to")
	if fromSet || toSet {
		if fromSet {
			want.Lo = anaYearFrom
		}
		if toSet {
			want.Hi = anaYearTo
		}
		if want.Lo > want.Hi {
			fmt.Fprintf(os.Stderr, "⚠ --year-from %d is after --year-to %d; the selection will be empty\n", want.Lo, want.Hi)
		}
		return &want
	}
	rng, ok := ds.DefaultSelection(want)
	if !ok {
		return nil
	}
	return &rng
}

func renderReport(rep *analysis.Report, asJSON, pretty bool) (string, error) {
	switch {
	case asJSON:
		b, err := rep.JSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case pretty:
		return renderPretty(rep.Markdown())
	default:
		return rep.Markdown(), nil
	}
}

var sectionRE = regexp.MustCompile(`^\[(.+)\]$`)

// renderPretty turns the bracketed report sections into Markdown headings and
// renders the result for the terminal.
func renderPretty(md string) (string, error) {
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		switch {
		case sectionRE.MatchString(l):
			lines[i] = "## " + sectionRE.FindStringSubmatch(l)[1]
		case l == "", strings.HasPrefix(l, "- "), strings.HasPrefix(l, "|"):
		default:
			// hard line break so key/value lines do not merge
			lines[i] = l + "  "
		}
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", fmt.Errorf("init renderer: %w", err)
	}
	out, err := r.Render(strings.Join(lines, "\n"))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the report as JSON")
	analyzeCmd.Flags().BoolVar(&anaPretty, "pretty", false, "render the report as styled terminal Markdown")
	analyzeCmd.Flags().IntVar(&anaTopJournals, "top-journals", aggregate.DefaultTopJournals, "number of journals to rank (0 = all)")
	analyzeCmd.Flags().IntVar(&anaTopWords, "top-words", aggregate.DefaultTopWords, "number of words to rank (0 = all)")
	analyzeCmd.Flags().StringVar(&anaWordField, "word-field", "title", "column to count words from: title|abstract")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows from the selection")
	analyzeCmd.Flags().IntVar(&anaYearFrom, "year-from", aggregate.DefaultRange.Lo, "first year of the selection (inclusive)")
	analyzeCmd.Flags().IntVar(&anaYearTo, "year-to", aggregate.DefaultRange.Hi, "last year of the selection (inclusive)")
}
