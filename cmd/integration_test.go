package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/metascope/internal/dataset"
)

const metadataCSV = "cord_uid,title,abstract,publish_time,journal,source_x\n" +
	"u1,Covid spread in cities,one two three,2019-12-30,Lancet,PMC\n" +
	"u2,Covid impact on schools,four five,2020-03-01,Lancet,PMC\n" +
	"u3,Vaccine trial results,six,2020-07-15,BMJ,Medline\n" +
	"u4,Long covid,seven eight nine ten,2021,Nature,PMC\n" +
	"u5,Undated preprint,eleven,,bioRxiv,biorxiv\n" +
	"u6,Missing abstract,,2021-05-05,Nature,PMC\n"

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmdErr executes the root command with args in an isolated HOME.
func runCmdErr(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := runCmdErr(t, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeCSV(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := setup(t)
	data := writeCSV(t, filepath.Join(home, "metadata.csv"), metadataCSV)
	out := filepath.Join(home, "reports", "summary.md")

	runCmd(t, "analyze", data, "-o", out, "--top-journals", "2")

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(b)
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Shape: (6, 6)",
		"[MISSING VALUES]",
		"- abstract: 1",
		"[TOP 2 JOURNALS]",
		"- Lancet: 2",
		"[PAPERS BY SOURCE]",
		"- PMC: 3",
		"[SELECTION 2020-2021]",
		"Records: 3",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestCLI_AnalyzeJSONWithRange(t *testing.T) {
	home := setup(t)
	data := writeCSV(t, filepath.Join(home, "metadata.csv"), metadataCSV)
	out := filepath.Join(home, "summary.json")

	runCmd(t, "analyze", data, "--json", "-o", out, "--year-from", "2019", "--year-to", "2019", "--word-field", "abstract")

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep struct {
		Cleaned   int    `json:"cleaned"`
		Dropped   int    `json:"dropped"`
		WordField string `json:"word_field"`
		Selection struct {
			Range struct{ Lo, Hi int } `json:"range"`
			Total int                  `json:"total"`
		} `json:"selection"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Cleaned != 5 || rep.Dropped != 1 || rep.WordField != "abstract" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Selection.Range.Lo != 2019 || rep.Selection.Range.Hi != 2019 || rep.Selection.Total != 1 {
		t.Fatalf("unexpected selection: %+v", rep.Selection)
	}
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	home := setup(t)

	err := runCmdErr(t, "analyze", filepath.Join(home, "absent.csv"))
	if !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("missing file: got %v", err)
	}

	bad := writeCSV(t, filepath.Join(home, "bad.csv"), "title,abstract,journal\nA,b,J\n")
	err = runCmdErr(t, "analyze", bad)
	if !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("missing column: got %v", err)
	}

	data := writeCSV(t, filepath.Join(home, "metadata.csv"), metadataCSV)
	if err := runCmdErr(t, "analyze", data, "--word-field", "journal"); err == nil {
		t.Fatalf("expected error for unsupported word field")
	}
	if err := runCmdErr(t, "analyze", data, "--json", "--pretty"); err == nil {
		t.Fatalf("expected error for --json with --pretty")
	}
}

func TestCLI_NegativeSampleRowsRejected(t *testing.T) {
	home := setup(t)
	data := writeCSV(t, filepath.Join(home, "metadata.csv"), metadataCSV)
	for _, args := range [][]string{
		{"analyze", data, "--sample-rows", "-1"},
		{"analyze-batch", data, "--sample-rows", "-1", "--quiet"},
		// rejected before the dataset is loaded or a port is bound
		{"serve", data, "--sample-rows", "-1", "--addr", "127.0.0.1:0"},
	} {
		err := runCmdErr(t, args...)
		if err == nil || !strings.Contains(err.Error(), "--sample-rows must not be negative") {
			t.Fatalf("%v: got %v", args, err)
		}
	}
}

func TestCLI_AnalyzeKeepsInnerQuotes(t *testing.T) {
	home := setup(t)
	data := writeCSV(t, filepath.Join(home, "metadata.csv"), metadataCSV+
		"u7,The \"R0\" of covid,abs,2020-02-02,Cell,WHO\n")
	out := filepath.Join(home, "summary.md")

	runCmd(t, "analyze", data, "-o", out, "--year-from", "2020", "--year-to", "2020", "--sample-rows", "10")

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), `| The "R0" of covid | Cell | 2020-02-02 | 1 |`) {
		t.Fatalf("quoted title missing from sample:\n%s", b)
	}
}

func TestCLI_AnalyzeUsesConfiguredDataPath(t *testing.T) {
	home := setup(t)
	data := writeCSV(t, filepath.Join(home, "data", "cord.csv"), metadataCSV)
	out := filepath.Join(home, "out.md")

	runCmd(t, "config", "set", "data_path", data)
	runCmd(t, "config", "set", "default_year_from", "2021")
	runCmd(t, "config", "set", "default_year_to", "2021")

	// Execute skips OnInitialize in tests, so load the saved file explicitly
	resetFlags(rootCmd)
	loadConfig()
	if cfg == nil || cfg.DataPath != data {
		t.Fatalf("config not saved: %+v", cfg)
	}
	rootCmd.SetArgs([]string{"analyze", "-o", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "[SELECTION 2021-2021]") {
		t.Fatalf("configured range not applied:\n%s", b)
	}
}

func TestCLI_ConfigSetValidates(t *testing.T) {
	home := setup(t)
	runCmd(t, "config", "set", "word_field", "Abstract")

	b, err := os.ReadFile(filepath.Join(home, ".metascope", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "word_field: abstract") {
		t.Fatalf("word_field not saved:\n%s", b)
	}
	for _, args := range [][]string{
		{"config", "set", "word_field", "journal"},
		{"config", "set", "top_words", "-1"},
		{"config", "set", "log_level", "loud"},
		{"config", "set", "nope", "1"},
	} {
		if err := runCmdErr(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
