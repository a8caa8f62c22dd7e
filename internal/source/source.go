// Package source discovers lecture-note PDFs and parses their filenames
// into ordering metadata.
package source

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNotPDF is returned for names without a .pdf extension.
	// Callers ignore these files silently.
	ErrNotPDF = errors.New("not a pdf file")

	// ErrUnrecognized is returned for PDFs whose name does not match
	// "<number>. <title>[ - part <n>][ - notes].pdf".
	ErrUnrecognized = errors.New("unrecognized filename")
)

const (
	pdfExt      = ".pdf"
	notesSuffix = " - notes"
)

var (
	partPattern = regexp.MustCompile(`(?i)\s*-\s*part\s*(\d+)$`)
	mainPattern = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)
)

// Document describes one source PDF.
type Document struct {
	Main     int    `json:"main" yaml:"main"`
	Part     *int   `json:"part,omitempty" yaml:"part,omitempty"`
	Title    string `json:"title" yaml:"title"`
	Notes    bool   `json:"notes" yaml:"notes"`
	Filename string `json:"filename" yaml:"filename"`
	Pages    int    `json:"pages,omitempty" yaml:"pages,omitempty"` // set once the file has been read
}

// PartOrZero returns the part number, or 0 when the document has no part.
func (d Document) PartOrZero() int {
	if d.Part == nil {
		return 0
	}
	return *d.Part
}

// Level is the ToC level: 1 for notes, 0 otherwise.
func (d Document) Level() int {
	if d.Notes {
		return 1
	}
	return 0
}

// DisplayTitle is the title shown in the table of contents.
// e.g. "The simplex method - Part 2 - Notes"
func (d Document) DisplayTitle() string {
	title := d.Title
	if d.Part != nil {
		title += fmt.Sprintf(" - Part %d", *d.Part)
	}
	if d.Notes {
		title += " - Notes"
	}
	return title
}

// Less reports whether d sorts before o by (main, part-or-0, notes).
func (d Document) Less(o Document) bool {
	if d.Main != o.Main {
		return d.Main < o.Main
	}
	if d.PartOrZero() != o.PartOrZero() {
		return d.PartOrZero() < o.PartOrZero()
	}
	return !d.Notes && o.Notes
}

// Parse turns a filename into a Document.
//
// The " - notes" suffix is stripped first, then " - part N", then the
// remaining stem must be "N. Title". A name with the suffixes in the other
// order does not parse as intended.
func Parse(name string) (Document, error) {
	if !strings.HasSuffix(strings.ToLower(name), pdfExt) {
		return Document{}, ErrNotPDF
	}
	stem := name[:len(name)-len(pdfExt)]

	doc := Document{Filename: name}

	if strings.HasSuffix(strings.ToLower(stem), notesSuffix) {
		doc.Notes = true
		stem = stem[:len(stem)-len(notesSuffix)]
	}

	if loc := partPattern.FindStringSubmatchIndex(stem); loc != nil {
		n, err := strconv.Atoi(stem[loc[2]:loc[3]])
		if err != nil {
			return Document{}, fmt.Errorf("%w: %s: part number: %v", ErrUnrecognized, name, err)
		}
		doc.Part = &n
		stem = stem[:loc[0]]
	}

	m := mainPattern.FindStringSubmatch(stem)
	if m == nil {
		return Document{}, fmt.Errorf("%w: %s", ErrUnrecognized, name)
	}
	main, err := strconv.Atoi(m[1])
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: number: %v", ErrUnrecognized, name, err)
	}
	doc.Main = main
	doc.Title = strings.TrimSpace(m[2])

	return doc, nil
}

// Sort orders documents by (main, part-or-0, notes). Equal keys keep
// their input order.
func Sort(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Less(docs[j])
	})
}
