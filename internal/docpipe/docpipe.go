// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docpipe extracts plain text from uploaded reference files so it
// can be appended to the planning prompt. Supported inputs: .docx, .md,
// .txt. Other extensions are skipped with a note; transcription of audio
// uploads is an external concern.
package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractAll reads each input file and returns the concatenated reference
// text. Unreadable or unsupported files are reported on w and skipped;
// they never fail session start.
func ExtractAll(files []string, w io.Writer) string {
	var b strings.Builder
	for _, f := range files {
		text, err := Extract(f)
		if err != nil {
			fmt.Fprintf(w, "skipping input file %s: %v\n", filepath.Base(f), err)
			continue
		}
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\nReference document %s:\n%s", filepath.Base(f), text)
	}
	return b.String()
}

// Extract returns the text content of one reference file.
func Extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return extractDocx(path)
	case ".md", ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported file type %s", filepath.Ext(path))
	}
}

// extractDocx parses a .docx file by reading word/document.xml from the
// ZIP archive and collecting paragraph text.
func extractDocx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	inParagraph := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				current.Reset()
			}
		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
