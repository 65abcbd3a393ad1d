// Package pdftext validates uploaded syllabi and extracts their plain
// text for the schedule pipeline.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrInvalidFileKind means the input is not a readable PDF document.
var ErrInvalidFileKind = errors.New("not a PDF document")

// Validate checks that the file at path is a PDF we can work with:
// a .pdf name and a parseable cross-reference table with at least one
// page. Failures wrap ErrInvalidFileKind.
func Validate(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("%s: %w", path, ErrInvalidFileKind)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()

	pages, err := api.PageCount(f, nil)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrInvalidFileKind, err)
	}
	if pages == 0 {
		return fmt.Errorf("%s: %w: no pages", path, ErrInvalidFileKind)
	}
	return nil
}

// Extract returns the plain text of the PDF at path. The text is
// sanitized to valid UTF-8 so downstream regex scanning never fails.
// An empty result is not an error here; the extractor decides what an
// empty document means.
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read text from %s: %w", path, err)
	}

	text := buf.String()
	if !utf8.ValidString(text) {
		var sb strings.Builder
		sb.Grow(len(text))
		for _, r := range text {
			sb.WriteRune(r)
		}
		text = sb.String()
	}
	return text, nil
}
