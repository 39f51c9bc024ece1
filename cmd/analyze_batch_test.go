package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_WritesWithCollisionSuffix(t *testing.T) {
	home := setup(t)

	// Two releases with the same basename in different directories
	writeCSV(t, filepath.Join(home, "d1", "metadata.csv"), metadataCSV)
	writeCSV(t, filepath.Join(home, "d2", "metadata.csv"), metadataCSV+"u7,Extra paper,text here,2022-01-01,Cell,WHO\n")
	outDir := filepath.Join(home, "summaries")

	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metadata.csv"), "--out-dir", outDir, "--quiet", "-j", "2")

	b1, err := os.ReadFile(filepath.Join(outDir, "metadata.summary.md"))
	if err != nil {
		t.Fatalf("missing first summary: %v", err)
	}
	b2, err := os.ReadFile(filepath.Join(outDir, "metadata__2.summary.md"))
	if err != nil {
		t.Fatalf("missing second summary: %v", err)
	}
	// inputs are sorted, so d1 comes first
	if !strings.Contains(string(b1), "Shape: (6, 6)") || !strings.Contains(string(b2), "Shape: (7, 6)") {
		t.Fatalf("summaries out of order:\n%s\n---\n%s", b1, b2)
	}
	if !strings.Contains(string(b2), "- WHO: 1") {
		t.Fatalf("second summary missing new source:\n%s", b2)
	}

	// a second run must not overwrite earlier output
	runCmd(t, "analyze-batch", filepath.Join(home, "d1", "metadata.csv"), "--out-dir", outDir, "--quiet", "--json")
	runCmd(t, "analyze-batch", filepath.Join(home, "d1", "metadata.csv"), "--out-dir", outDir, "--quiet", "--json")
	for _, name := range []string{"metadata.summary.json", "metadata__2.summary.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := setup(t)
	if err := runCmdErr(t, "analyze-batch", filepath.Join(home, "*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestAnalyzeBatch_FailsOnBadFile(t *testing.T) {
	home := setup(t)
	writeCSV(t, filepath.Join(home, "good.csv"), metadataCSV)
	writeCSV(t, filepath.Join(home, "bad.csv"), "title,journal\nA,J\n")
	if err := runCmdErr(t, "analyze-batch", filepath.Join(home, "*.csv"), "--quiet"); err == nil {
		t.Fatalf("expected error for file without required columns")
	}
}
