// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docpipe

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDocx builds a minimal .docx with the given paragraphs.
func writeDocx(t *testing.T, path string, paragraphs []string) {
	t.Helper()

	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(doc.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.docx")
	writeDocx(t, path, []string{"First paragraph.", "Second paragraph."})

	text, err := Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "First paragraph.\nSecond paragraph."
	if text != want {
		t.Errorf("Extract = %q, want %q", text, want)
	}
}

func TestExtractDocxMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("other.xml"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Extract(path); err == nil {
		t.Error("expected error for docx without word/document.xml")
	}
}

func TestExtractPlainFormats(t *testing.T) {
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "brief.md")
	if err := os.WriteFile(mdPath, []byte("# Heading\n\nBody text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err := Extract(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Body text.") {
		t.Errorf("markdown text missing: %q", text)
	}

	txtPath := filepath.Join(dir, "notes.TXT")
	if err := os.WriteFile(txtPath, []byte("  plain notes  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err = Extract(txtPath)
	if err != nil {
		t.Fatal(err)
	}
	if text != "plain notes" {
		t.Errorf("Extract = %q, want trimmed text", text)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(good, []byte("reference content"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.md")

	var log bytes.Buffer
	got := ExtractAll([]string{good, missing}, &log)

	if !strings.Contains(got, "Reference document a.txt:") {
		t.Errorf("missing reference header: %q", got)
	}
	if !strings.Contains(got, "reference content") {
		t.Errorf("missing file content: %q", got)
	}
	if !strings.Contains(log.String(), "missing.md") {
		t.Errorf("unreadable file not reported: %q", log.String())
	}
}

func TestExtractAllEmpty(t *testing.T) {
	var log bytes.Buffer
	if got := ExtractAll(nil, &log); got != "" {
		t.Errorf("ExtractAll(nil) = %q, want empty", got)
	}
}
