package assemble

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/notebind/internal/render"
	"github.com/jackzampolin/notebind/internal/source"
)

// contentBlock is the result of reading the sources in merge order.
type contentBlock struct {
	Included []source.Document
	Entries  []render.TOCEntry
	Skipped  []source.Skip
	Pages    int
}

// Paths returns the full paths of the included documents.
func (c *contentBlock) Paths(dir string) []string {
	paths := make([]string, len(c.Included))
	for i, doc := range c.Included {
		paths[i] = filepath.Join(dir, doc.Filename)
	}
	return paths
}

// readSources validates and counts the pages of each document and derives its ToC entry.
// A file that cannot be read is logged and skipped as a whole; the rest
// continue.
func readSources(dir string, docs []source.Document, logger *slog.Logger) *contentBlock {
	block := &contentBlock{}

	for _, doc := range docs {
		path := filepath.Join(dir, doc.Filename)
		pages, err := inspect(path)
		if err == nil && pages == 0 {
			err = fmt.Errorf("document has no pages")
		}
		if err != nil {
			logger.Error("failed to read source document", "file", doc.Filename, "error", err)
			block.Skipped = append(block.Skipped, source.Skip{
				Filename: doc.Filename,
				Stage:    source.StageRead,
				Reason:   err.Error(),
			})
			continue
		}

		doc.Pages = pages
		block.Entries = append(block.Entries, render.TOCEntry{
			Title:  doc.DisplayTitle(),
			Level:  doc.Level(),
			Offset: block.Pages + 1,
		})
		block.Included = append(block.Included, doc)
		block.Pages += pages

		logger.Info("processed source document", "file", doc.Filename, "pages", pages, "starts_at", block.Pages-pages+1)
	}

	return block
}

// inspect validates path with the same checks the merge applies and returns
// its page count, so a file the merge would reject is skipped up front.
func inspect(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	if err := api.Validate(f, nil); err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind PDF: %w", err)
	}
	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// pageCount opens path and returns its page count.
func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// mergeFiles concatenates inputs, in order, into outPath.
func mergeFiles(inputs []string, outPath string) error {
	switch len(inputs) {
	case 0:
		return fmt.Errorf("no PDF files to merge")
	case 1:
		return copyFile(inputs[0], outPath)
	}
	if err := api.MergeCreateFile(inputs, outPath, false, nil); err != nil {
		return fmt.Errorf("failed to merge %d PDFs: %w", len(inputs), err)
	}
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
