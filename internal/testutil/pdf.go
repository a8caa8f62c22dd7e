// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF writes a Letter PDF with the given number of pages to
// dir/name and returns its path. Each page carries "<name> p<N>".
func WritePDF(t testing.TB, dir, name string, pages int) string {
	t.Helper()

	pdf := gofpdf.New("P", "pt", "Letter", "")
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 14)
		pdf.Cell(200, 20, fmt.Sprintf("%s p%d", name, i))
	}

	path := filepath.Join(dir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteCorruptPDF writes a file with a .pdf name that no PDF reader accepts.
func WriteCorruptPDF(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is not a pdf\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteFile writes arbitrary content to dir/name.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
