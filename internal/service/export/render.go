package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported export rendering.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// ParseFormat validates a requested format string. Unknown formats are
// rejected here, before any remote or filesystem work happens.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatCSV, FormatPDF, FormatDOCX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q: want one of md, csv, pdf, docx", s)
	}
}

// Render produces the artifact bytes for one format.
func Render(m Model, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return renderMarkdown(m), nil
	case FormatCSV:
		return renderCSV(m)
	case FormatPDF:
		return renderPDF(m)
	case FormatDOCX:
		return renderDOCX(m)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Write renders the model and writes the artifact to disk. Path
// precedence: explicit outputPath, then outputDir joined with the
// derived name, then the derived name in the working directory. It
// returns the absolute path written and the byte count.
func Write(m Model, f Format, outputPath, outputDir string) (string, int, error) {
	data, err := Render(m, f)
	if err != nil {
		return "", 0, err
	}

	path := outputPath
	if path == "" {
		path = filepath.Join(outputDir, derivedName(m, f))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", 0, fmt.Errorf("resolve output path: %w", err)
	}
	if dir := filepath.Dir(abs); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write export: %w", err)
	}
	return abs, len(data), nil
}

func derivedName(m Model, f Format) string {
	stem := strings.TrimSuffix(m.FileName, filepath.Ext(m.FileName))
	if stem == "" {
		stem = "session-" + m.SessionID
	}
	return stem + "-focus-group-report." + string(f)
}
