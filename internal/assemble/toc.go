package assemble

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jackzampolin/notebind/internal/render"
)

// tocLayout describes the rendered table of contents.
type tocLayout struct {
	Estimated int  // page count from the placeholder pass
	Assumed   int  // page count the printed numbers were computed with
	Pages     int  // page count of the written ToC
	Passes    int  // final renders performed
	Converged bool // Assumed == Pages
}

// renderTOCFunc has the signature of render.TOC.
type renderTOCFunc func(w io.Writer, entries []render.TOCEntry, label render.PageLabel, opts render.TOCOptions) (int, error)

// absoluteLabel prints each entry's page in the final document, assuming
// the ToC occupies tocPages pages after the title page.
func absoluteLabel(tocPages int) render.PageLabel {
	return func(e render.TOCEntry) string {
		return strconv.Itoa(1 + tocPages + e.Offset)
	}
}

// layoutTOC sizes and renders the table of contents into outPath.
//
// The printed page numbers depend on the ToC's own length, so the length is
// first estimated with a placeholder number and then re-rendered with real
// numbers until the page count stops changing or maxPasses is reached.
func layoutTOC(renderFn renderTOCFunc, outPath string, entries []render.TOCEntry, placeholder string, maxPasses int, opts render.TOCOptions, logger *slog.Logger) (*tocLayout, error) {
	if maxPasses < 1 {
		maxPasses = 1
	}

	est, err := renderFn(nil, entries, render.Placeholder(placeholder), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate table of contents: %w", err)
	}
	if est == 0 && len(entries) > 0 {
		est = 1
	}
	logger.Info("estimated table of contents", "pages", est)

	layout := &tocLayout{Estimated: est}
	assumed := est
	var buf bytes.Buffer
	for {
		buf.Reset()
		layout.Passes++
		pages, err := renderFn(&buf, entries, absoluteLabel(assumed), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to render table of contents: %w", err)
		}
		layout.Assumed = assumed
		layout.Pages = pages

		if pages == assumed {
			layout.Converged = true
			break
		}
		if layout.Passes >= maxPasses {
			logger.Warn("table of contents page count did not settle; printed page numbers are off",
				"assumed", assumed, "rendered", pages, "delta", pages-assumed, "passes", layout.Passes)
			break
		}
		logger.Debug("table of contents page count changed", "from", assumed, "to", pages)
		assumed = pages
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write table of contents: %w", err)
	}
	return layout, nil
}
