package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"md", "CSV", " pdf ", "Docx"} {
		if _, err := ParseFormat(s); err != nil {
			t.Fatalf("ParseFormat(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestRenderRepeatable(t *testing.T) {
	m := BuildModel(sampleSession(), sampleCatalog())
	for _, f := range []Format{FormatMarkdown, FormatCSV, FormatPDF, FormatDOCX} {
		first, err := Render(m, f)
		if err != nil {
			t.Fatalf("render %s: %v", f, err)
		}
		if len(first) == 0 {
			t.Fatalf("render %s produced no output", f)
		}
		if f == FormatPDF || f == FormatDOCX {
			// Binary formats embed timestamps, so only the text
			// renderers are required to be byte-identical.
			continue
		}
		second, err := Render(m, f)
		if err != nil {
			t.Fatalf("render %s again: %v", f, err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("render %s is not repeatable", f)
		}
	}
}

func TestRenderMarkdownContent(t *testing.T) {
	m := BuildModel(sampleSession(), sampleCatalog())
	out := string(mustRender(t, m, FormatMarkdown))

	for _, want := range []string{
		"# Focus Group Report: whitepaper_v3.pdf",
		"CTO Skeptic",
		"Vague claims",
		"backend timeout",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCSVContent(t *testing.T) {
	m := BuildModel(sampleSession(), sampleCatalog())
	out := string(mustRender(t, m, FormatCSV))

	if !strings.Contains(out, "session_id") || !strings.Contains(out, "persona_id") {
		t.Fatalf("csv output missing headers:\n%s", out)
	}
	if !strings.Contains(out, "cto_skeptic") {
		t.Fatalf("csv output missing persona row:\n%s", out)
	}
}

func TestWriteExplicitPath(t *testing.T) {
	m := BuildModel(sampleSession(), sampleCatalog())
	target := filepath.Join(t.TempDir(), "nested", "report.md")

	path, n, err := Write(m, FormatMarkdown, target, "ignored-dir")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != target {
		t.Fatalf("expected path %q, got %q", target, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) != n {
		t.Fatalf("reported %d bytes, file has %d", n, len(data))
	}
}

func TestWriteOutputDir(t *testing.T) {
	m := BuildModel(sampleSession(), sampleCatalog())
	dir := t.TempDir()

	path, _, err := Write(m, FormatCSV, "", dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := filepath.Join(dir, "whitepaper_v3-focus-group-report.csv")
	if path != want {
		t.Fatalf("expected path %q, got %q", want, path)
	}
}

func TestWriteDefaultsToWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	m := BuildModel(sampleSession(), sampleCatalog())

	path, _, err := Write(m, FormatMarkdown, "", "")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "whitepaper_v3-focus-group-report.md" {
		t.Fatalf("unexpected derived name: %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file in working directory: %v", err)
	}
}

func TestWriteUnsupportedFormatHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	m := BuildModel(sampleSession(), sampleCatalog())

	if _, _, err := Write(m, Format("xlsx"), "", dir); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files written, found %d", len(entries))
	}
}

func mustRender(t *testing.T, m Model, f Format) []byte {
	t.Helper()
	data, err := Render(m, f)
	if err != nil {
		t.Fatalf("render %s: %v", f, err)
	}
	return data
}
