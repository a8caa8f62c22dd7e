// Package render draws the generated pages of a bound document: the title
// page and the table of contents.
//
// Pages are Letter size with 1 inch margins. All measurements are points.
package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	inch = 72.0

	pageSize = "Letter"
	creator  = "notebind"
)

// newDocument returns an empty Letter document with 1 inch margins and
// zero cell padding, so measured string widths match drawn widths.
func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(inch, inch, inch)
	pdf.SetAutoPageBreak(true, inch)
	pdf.SetCellMargin(0)
	pdf.SetCreator(creator, true)
	return pdf
}

// write flushes pdf to w. A nil w only checks for drawing errors.
func write(pdf *gofpdf.Fpdf, w io.Writer) error {
	if pdf.Err() {
		return fmt.Errorf("failed to draw page: %w", pdf.Error())
	}
	if w == nil {
		w = io.Discard
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
