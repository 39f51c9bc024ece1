package cmd

import (
	"strings"
	"testing"
)

func TestRenderPretty(t *testing.T) {
	md := "[DATASET SUMMARY]\nFile: metadata.csv\nShape: (6, 6)\n\n[PAPERS BY SOURCE]\n- PMC: 3\n"
	out, err := renderPretty(md)
	if err != nil {
		t.Fatalf("renderPretty: %v", err)
	}
	for _, want := range []string{"DATASET SUMMARY", "PAPERS BY SOURCE", "metadata.csv", "PMC: 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("pretty output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[DATASET SUMMARY]") {
		t.Fatalf("section brackets should become headings")
	}
}

func TestSummaryPath(t *testing.T) {
	dir := t.TempDir()
	used := map[string]struct{}{}
	a := summaryPath(dir, "/x/metadata.csv", false, used)
	b := summaryPath(dir, "/y/metadata.csv", false, used)
	c := summaryPath(dir, "/y/metadata.csv", true, used)
	if !strings.HasSuffix(a, "metadata.summary.md") || !strings.HasSuffix(b, "metadata__2.summary.md") || !strings.HasSuffix(c, "metadata.summary.json") {
		t.Fatalf("got %s, %s, %s", a, b, c)
	}
}
