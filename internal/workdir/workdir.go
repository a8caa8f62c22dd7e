// Package workdir manages the scratch directory that holds intermediate
// PDFs between pipeline stages.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirPrefix prefixes every scratch directory name.
	DirPrefix = "notebind-"

	// TitleFile holds the rendered title page.
	TitleFile = "title.pdf"

	// TOCFile holds the final rendered table of contents.
	TOCFile = "toc.pdf"

	// ContentFile holds the concatenated source documents.
	ContentFile = "content.pdf"

	// UnnumberedFile holds title + ToC + content before stamping.
	UnnumberedFile = "unnumbered.pdf"
)

// Dir represents one run's scratch directory.
type Dir struct {
	path string
}

// New creates a fresh scratch directory under root.
// If root is empty, uses the OS temp directory.
func New(root, runID string) (*Dir, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create work root: %w", err)
		}
	}
	path, err := os.MkdirTemp(root, DirPrefix+runID+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the scratch directory.
func (d *Dir) Path() string {
	return d.path
}

// TitlePath returns the path to the title page PDF.
func (d *Dir) TitlePath() string {
	return filepath.Join(d.path, TitleFile)
}

// TOCPath returns the path to the table of contents PDF.
func (d *Dir) TOCPath() string {
	return filepath.Join(d.path, TOCFile)
}

// ContentPath returns the path to the merged content PDF.
func (d *Dir) ContentPath() string {
	return filepath.Join(d.path, ContentFile)
}

// UnnumberedPath returns the path to the assembled, unstamped PDF.
func (d *Dir) UnnumberedPath() string {
	return filepath.Join(d.path, UnnumberedFile)
}

// Discard removes an intermediate file once it has been consumed.
// Errors are ignored.
func (d *Dir) Discard(paths ...string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

// Exists returns true if the scratch directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// Remove deletes the scratch directory and everything in it.
func (d *Dir) Remove() error {
	return os.RemoveAll(d.path)
}
