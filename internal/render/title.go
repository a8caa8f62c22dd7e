package render

import (
	"io"
)

// TitleOptions configures the title page.
type TitleOptions struct {
	Title  string
	Author string
}

const (
	titleFontSize  = 24.0
	authorFontSize = 18.0
	lineSpacing    = 1.2
)

// TitlePage draws a single page with the title centered above the vertical
// midpoint and the author centered below it.
func TitlePage(w io.Writer, opts TitleOptions) error {
	pdf := newDocument()
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(opts.Title, true)
	pdf.SetAuthor(opts.Author, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, height := pdf.GetPageSize()
	textW := width - 2*inch
	mid := height / 2

	pdf.SetFont("Helvetica", "B", titleFontSize)
	title := tr(opts.Title)
	lineH := titleFontSize * lineSpacing
	lines := pdf.SplitLines([]byte(title), textW)
	blockH := float64(len(lines)) * lineH
	pdf.SetXY(inch, mid-inch/2-blockH)
	pdf.MultiCell(textW, lineH, title, "", "C", false)

	if opts.Author != "" {
		pdf.SetFont("Helvetica", "", authorFontSize)
		pdf.SetXY(inch, mid+inch/2)
		pdf.MultiCell(textW, authorFontSize*lineSpacing, tr(opts.Author), "", "C", false)
	}

	return write(pdf, w)
}
