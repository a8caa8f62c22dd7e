package render

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

// TOCEntry is one line of the table of contents.
type TOCEntry struct {
	Title  string `json:"title" yaml:"title"`
	Level  int    `json:"level" yaml:"level"`   // 0 = section, 1 = subsection
	Offset int    `json:"offset" yaml:"offset"` // 1-indexed start page within the content block
}

// TOCOptions configures the table of contents.
type TOCOptions struct {
	Header        string
	MaxTitleChars int
}

// PageLabel returns the page number text printed for an entry.
type PageLabel func(TOCEntry) string

// Placeholder returns a label that prints the same text for every entry,
// for use before the real page numbers are known.
func Placeholder(label string) PageLabel {
	return func(TOCEntry) string { return label }
}

const (
	ellipsis = "..."
	leader   = ". "
	minDots  = 3

	headerFontSize = 16.0
	headerSpace    = 0.2 * inch
)

type levelStyle struct {
	style   string
	size    float64
	leading float64
	before  float64
	indent  float64
}

var levelStyles = [...]levelStyle{
	{style: "B", size: 11, leading: 14, before: 6},
	{style: "", size: 10, leading: 12, indent: inch / 4},
}

func styleFor(level int) levelStyle {
	if level <= 0 {
		return levelStyles[0]
	}
	return levelStyles[1]
}

// TOC renders the table of contents to w and returns how many pages it
// occupies. Pass a nil w to measure without keeping the output.
//
// Each line is the title, a dotted leader, and the right-aligned page
// number. The leader is sized from font metrics to fill the line.
func TOC(w io.Writer, entries []TOCEntry, label PageLabel, opts TOCOptions) (int, error) {
	pdf := newDocument()
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	lineW := width - left - right

	header := opts.Header
	if header == "" {
		header = "Table of Contents"
	}
	pdf.SetFont("Helvetica", "B", headerFontSize)
	pdf.CellFormat(lineW, headerFontSize*lineSpacing, tr(header), "", 1, "C", false, 0, "")
	pdf.Ln(headerSpace)

	for i, e := range entries {
		st := styleFor(e.Level)
		pdf.SetFont("Helvetica", st.style, st.size)
		if st.before > 0 && i > 0 {
			pdf.Ln(st.before)
		}
		drawEntry(pdf, tr, e.Title, label(e), st, left, lineW, opts.MaxTitleChars)
	}

	pages := pdf.PageCount()
	if err := write(pdf, w); err != nil {
		return 0, err
	}
	return pages, nil
}

// drawEntry writes one "title . . . . 12" line using the current font.
// title is UTF-8; tr converts it to the core font encoding.
func drawEntry(pdf *gofpdf.Fpdf, tr func(string) string, title, page string, st levelStyle, left, lineW float64, maxChars int) {
	avail := lineW - st.indent
	gap := pdf.GetStringWidth(" ")
	unitW := pdf.GetStringWidth(leader)
	pageW := pdf.GetStringWidth(page)

	titleRoom := avail - pageW - 2*gap - minDots*unitW
	text := tr(fitWidth(truncate(title, maxChars), titleRoom, func(s string) float64 {
		return pdf.GetStringWidth(tr(s))
	}))
	titleW := pdf.GetStringWidth(text)

	dots := int((avail - titleW - pageW - 2*gap) / unitW)
	if dots < 0 {
		dots = 0
	}
	dotsW := float64(dots) * unitW

	pdf.SetX(left + st.indent)
	pdf.CellFormat(titleW+gap, st.leading, text+" ", "", 0, "L", false, 0, "")
	if dots > 0 {
		pdf.CellFormat(dotsW, st.leading, strings.Repeat(leader, dots), "", 0, "L", false, 0, "")
	}
	pdf.CellFormat(avail-titleW-gap-dotsW, st.leading, page, "", 1, "R", false, 0, "")
}

// truncate cuts s to at most limit runes, ending in "..." when shortened.
// A limit of zero or less disables it.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep < 1 {
		keep = 1
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:keep]), " ") + ellipsis
}

// fitWidth shortens s rune by rune until measure reports it no wider
// than room.
func fitWidth(s string, room float64, measure func(string) float64) string {
	if measure(s) <= room {
		return s
	}
	runes := []rune(strings.TrimSuffix(s, ellipsis))
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		cand := strings.TrimRight(string(runes), " ") + ellipsis
		if measure(cand) <= room {
			return cand
		}
	}
	return string(runes) + ellipsis
}
