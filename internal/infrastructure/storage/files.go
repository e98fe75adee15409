package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"SponsorFinder/internal/ports"
)

// FileReportWriter persists rendered reports as Markdown files in one directory.
type FileReportWriter struct {
	dir string
}

var _ ports.ReportWriter = (*FileReportWriter)(nil)

// NewFileReportWriter targets dir; it is created on first write.
func NewFileReportWriter(dir string) *FileReportWriter {
	return &FileReportWriter{dir: dir}
}

// Dir returns the output directory.
func (w *FileReportWriter) Dir() string {
	return w.dir
}

// WriteReport writes body to <dir>/<name> and returns the resulting path.
// name must be a bare file name.
func (w *FileReportWriter) WriteReport(ctx context.Context, name, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid report name %q", name)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}
