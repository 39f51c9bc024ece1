package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/analysis"
	"github.com/KaramelBytes/metascope/internal/utils"
)

var (
	abOutDir      string
	abJSON        bool
	abJobs        int
	abQuiet       bool
	abTopJournals int
	abTopWords    int
	abWordField   string
	abSampleRows  int
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze several metadata CSVs (for example successive releases) in parallel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		eo, err := exploreOptions(cmd, abTopJournals, abTopWords, abWordField)
		if err != nil {
			return err
		}
		n, err := sampleRows(cmd, abSampleRows)
		if err != nil {
			return err
		}
		opt := analysis.Options{Options: eo, SampleRows: n}
		s := settings()
		want := aggregate.YearRange{Lo: s.DefaultYearFrom, Hi: s.DefaultYearTo}

		jobs := abJobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}
		reports := make([]*analysis.Report, len(files))
		var g errgroup.Group
		g.SetLimit(jobs)
		for i, path := range files {
			g.Go(func() error {
				ds, err := loadDataset(path)
				if err != nil {
					return err
				}
				o := opt
				if rng, ok := ds.DefaultSelection(want); ok {
					o.Range = &rng
				}
				reports[i] = analysis.NewReport(ds, o)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		total := len(files)
		used := map[string]struct{}{}
		for i, rep := range reports {
			if !abQuiet {
				fmt.Printf("[%d/%d] %s: %d rows, %d cleaned\n", i+1, total, filepath.Base(files[i]), rep.Rows, rep.Cleaned)
			}
			for _, w := range rep.Warnings {
				logger.Warn(w, zap.String("file", files[i]), zap.String("run_id", rep.RunID))
			}
			out, err := renderReport(rep, abJSON, false)
			if err != nil {
				return err
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Println(out)
				}
				continue
			}
			outFile := summaryPath(abOutDir, files[i], abJSON, used)
			if err := utils.SafeWriteFile(outFile, []byte(out)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Printf("✓ Wrote analysis to %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// summaryPath names the output for input, adding a __N suffix when the name is
// already taken on disk or earlier in this run.
func summaryPath(dir, input string, asJSON bool, used map[string]struct{}) string {
	ext := ".summary.md"
	if asJSON {
		ext = ".summary.json"
	}
	base := filepath.Base(input)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	taken := func(p string) bool {
		if _, ok := used[p]; ok {
			return true
		}
		_, err := os.Stat(p)
		return err == nil
	}
	outFile := filepath.Join(dir, safe+ext)
	for idx := 2; taken(outFile); idx++ {
		outFile = filepath.Join(dir, fmt.Sprintf("%s__%d%s", safe, idx, ext))
	}
	used[outFile] = struct{}{}
	return outFile
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one summary per input (default: print to stdout)")
	analyzeBatchCmd.Flags().BoolVar(&abJSON, "json", false, "emit reports as JSON")
	analyzeBatchCmd.Flags().IntVarP(&abJobs, "jobs", "j", 0, "files analyzed concurrently (0 = number of CPUs)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	analyzeBatchCmd.Flags().IntVar(&abTopJournals, "top-journals", aggregate.DefaultTopJournals, "number of journals to rank (0 = all)")
	analyzeBatchCmd.Flags().IntVar(&abTopWords, "top-words", aggregate.DefaultTopWords, "number of words to rank (0 = all)")
	analyzeBatchCmd.Flags().StringVar(&abWordField, "word-field", "title", "column to count words from: title|abstract")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows from the selection")
}
