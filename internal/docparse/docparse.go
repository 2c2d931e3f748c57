// Package docparse extracts plain text from uploaded resume documents.
// PDF and DOCX are supported; anything else is rejected up front so the
// caller can report a clean error instead of feeding binary noise into
// skill extraction.
package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for filenames that are neither .pdf
// nor .docx.
var ErrUnsupportedFormat = errors.New("docparse: unsupported document format")

// Text extracts the plain text of a document, dispatching on the file
// extension of filename (case-insensitive).
func Text(r io.ReaderAt, size int64, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF(r, size)
	case ".docx":
		return DOCX(r, size)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// PDF extracts the text of every page, concatenated in page order.
func PDF(r io.ReaderAt, size int64) (string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var b strings.Builder
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return b.String(), nil
}

// DOCX extracts paragraph text from the main document part of a .docx
// archive, one line per paragraph.
func DOCX(r io.ReaderAt, size int64) (string, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docparse: docx archive has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx document part: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read docx document part: %w", err)
	}
	return docxText(raw)
}

func docxText(raw []byte) (string, error) {
	var parsed struct {
		Paragraphs []struct {
			Texts []string `xml:"r>t"`
		} `xml:"body>p"`
	}
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse docx document xml: %w", err)
	}
	var b strings.Builder
	for _, p := range parsed.Paragraphs {
		for _, t := range p.Texts {
			b.WriteString(t)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// NewDOCX builds an in-memory .docx archive with one paragraph per
// line of text. Used by tests.
func NewDOCX(lines []string) ([]byte, error) {
	var b bytes.Buffer
	w := zip.NewWriter(&b)

	part, err := w.Create("word/document.xml")
	if err != nil {
		return nil, err
	}
	var doc strings.Builder
	doc.WriteString(xml.Header)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range lines {
		doc.WriteString(`<w:p><w:r><w:t>`)
		if err := xml.EscapeText(&doc, []byte(line)); err != nil {
			return nil, err
		}
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)
	if _, err := io.WriteString(part, doc.String()); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
