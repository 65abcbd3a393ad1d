package pdftext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRejectsNonPDFExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Validate(path)
	if !errors.Is(err, ErrInvalidFileKind) {
		t.Errorf("err = %v, want ErrInvalidFileKind", err)
	}
}

func TestValidateRejectsCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 garbage with no xref"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Validate(path)
	if !errors.Is(err, ErrInvalidFileKind) {
		t.Errorf("err = %v, want ErrInvalidFileKind", err)
	}
}

func TestValidateMissingFile(t *testing.T) {
	err := Validate(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if errors.Is(err, ErrInvalidFileKind) {
		t.Error("missing file should surface the I/O error, not a file kind error")
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
