package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReportCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports", "nested")
	w := NewFileReportWriter(dir)

	path, err := w.WriteReport(context.Background(), "episode_analysis_1.md", "# Report\n")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "episode_analysis_1.md") {
		t.Fatalf("unexpected path %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "# Report\n" {
		t.Fatalf("unexpected content %q (%v)", raw, err)
	}

	if _, err := w.WriteReport(context.Background(), "episode_analysis_1.md", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	raw, _ = os.ReadFile(path)
	if string(raw) != "second" {
		t.Fatalf("expected overwrite, got %q", raw)
	}
}

func TestWriteReportRejectsPaths(t *testing.T) {
	t.Parallel()

	w := NewFileReportWriter(t.TempDir())
	for _, name := range []string{"", "..", "../escape.md", "sub/dir.md"} {
		if _, err := w.WriteReport(context.Background(), name, "x"); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}

func TestWriteReportFailsWhenDirIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileReportWriter(file).WriteReport(context.Background(), "weekly_report.md", "x"); err == nil {
		t.Fatalf("expected an error when the output dir is a file")
	}
}
