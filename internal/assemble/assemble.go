// Package assemble binds a directory of lecture-note PDFs into one document
// with a title page, a table of contents, and numbered content pages.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/notebind/internal/config"
	"github.com/jackzampolin/notebind/internal/render"
	"github.com/jackzampolin/notebind/internal/source"
	"github.com/jackzampolin/notebind/internal/workdir"
)

// ErrNothingToDo is returned when the source directory holds no PDF that
// could be parsed and read. No output is written; the Report still lists
// the skipped files.
var ErrNothingToDo = errors.New("no usable source documents")

// Options contains the parameters for one build.
type Options struct {
	SourceDir   string
	Output      string
	Title       string
	Author      string
	WorkRoot    string // parent of the scratch directory; "" for the OS temp dir
	KeepWorkDir bool   // keep scratch files after a failed build

	TOC         render.TOCOptions
	Placeholder string // page number used to estimate the ToC length
	MaxPasses   int    // final ToC renders before accepting drift

	Stamp StampOptions

	Logger *slog.Logger // Optional logger for progress updates
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		SourceDir:   cfg.SourceDir,
		Output:      cfg.Output,
		Title:       cfg.Title,
		Author:      cfg.Author,
		WorkRoot:    cfg.WorkDir,
		KeepWorkDir: cfg.KeepWorkDir,
		TOC: render.TOCOptions{
			Header:        cfg.TOC.Header,
			MaxTitleChars: cfg.TOC.MaxTitleChars,
		},
		Placeholder: cfg.TOC.Placeholder,
		MaxPasses:   cfg.TOC.MaxPasses,
		Stamp: StampOptions{
			FontSize:     cfg.Stamp.FontSize,
			BottomOffset: cfg.Stamp.BottomOffset,
		},
		Logger: logger,
	}
}

// Report summarizes a build.
type Report struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	Output       string            `json:"output,omitempty" yaml:"output,omitempty"`
	Included     []source.Document `json:"included" yaml:"included"`
	Entries      []render.TOCEntry `json:"toc" yaml:"toc"`
	Skipped      []source.Skip     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	ContentPages int               `json:"content_pages" yaml:"content_pages"`
	TOCPages     int               `json:"toc_pages" yaml:"toc_pages"`
	TotalPages   int               `json:"total_pages" yaml:"total_pages"`
	TOCPasses    int               `json:"toc_passes" yaml:"toc_passes"`
	TOCConverged bool              `json:"toc_converged" yaml:"toc_converged"`
	Duration     string            `json:"duration" yaml:"duration"`
}

// Builder runs builds. The zero value is not usable; call NewBuilder.
type Builder struct {
	renderTOC renderTOCFunc
}

// NewBuilder returns a Builder that renders with the default backend.
func NewBuilder() *Builder {
	return &Builder{renderTOC: render.TOC}
}

// Run builds with a default Builder.
func Run(ctx context.Context, opts Options) (*Report, error) {
	return NewBuilder().Run(ctx, opts)
}

// Run executes the pipeline: scan, title page, content merge, ToC
// estimate, ToC final, merge, stamp, write.
//
// Files that fail to parse or read are skipped and reported. Any other
// failure aborts the build.
func (b *Builder) Run(ctx context.Context, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	runID := uuid.New().String()
	log = log.With("run_id", runID)
	started := time.Now()
	report := &Report{RunID: runID}

	log.Info("starting build", "source_dir", opts.SourceDir, "output", opts.Output)

	docs, skips, err := source.Scan(opts.SourceDir, log)
	if err != nil {
		return nil, err
	}
	report.Skipped = skips
	log.Info("found source documents", "count", len(docs), "unparsable", len(skips))
	for _, doc := range docs {
		log.Info("queued", "file", doc.Filename, "title", doc.Title, "part", doc.PartOrZero(), "notes", doc.Notes)
	}
	if len(docs) == 0 {
		return b.finish(report, started, log), ErrNothingToDo
	}

	dir, err := workdir.New(opts.WorkRoot, runID[:8])
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if ok || !opts.KeepWorkDir {
			_ = dir.Remove()
			return
		}
		if dir.Exists() {
			log.Warn("keeping work directory", "path", dir.Path())
		}
	}()

	// Title page
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = writeFile(dir.TitlePath(), func(w io.Writer) error {
		return render.TitlePage(w, render.TitleOptions{Title: opts.Title, Author: opts.Author})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create title page: %w", err)
	}
	log.Info("added title page", "title", opts.Title, "author", opts.Author)

	// Content
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	block := readSources(opts.SourceDir, docs, log)
	report.Skipped = append(report.Skipped, block.Skipped...)
	report.Included = block.Included
	report.Entries = block.Entries
	report.ContentPages = block.Pages
	if len(block.Included) == 0 {
		ok = true
		return b.finish(report, started, log), ErrNothingToDo
	}
	if err := mergeFiles(block.Paths(opts.SourceDir), dir.ContentPath()); err != nil {
		return nil, err
	}
	log.Info("merged content", "documents", len(block.Included), "pages", block.Pages)

	// Table of contents
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	toc, err := layoutTOC(b.renderTOC, dir.TOCPath(), block.Entries, opts.Placeholder, opts.MaxPasses, opts.TOC, log)
	if err != nil {
		return nil, err
	}
	report.TOCPages = toc.Pages
	report.TOCPasses = toc.Passes
	report.TOCConverged = toc.Converged
	log.Info("added table of contents", "pages", toc.Pages, "passes", toc.Passes)

	// Assemble
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mergeFiles([]string{dir.TitlePath(), dir.TOCPath(), dir.ContentPath()}, dir.UnnumberedPath()); err != nil {
		return nil, err
	}
	dir.Discard(dir.TitlePath(), dir.TOCPath(), dir.ContentPath())

	total, err := pageCount(dir.UnnumberedPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read assembled document: %w", err)
	}
	frontPages := 1 + toc.Pages
	if want := frontPages + block.Pages; total != want {
		return nil, fmt.Errorf("assembled document has %d pages, expected %d", total, want)
	}

	// Stamp and write
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dirName := filepath.Dir(opts.Output); dirName != "." {
		if err := os.MkdirAll(dirName, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmpOut := opts.Output + ".tmp"
	if err := stampPages(dir.UnnumberedPath(), tmpOut, StampPlan(total, frontPages), opts.Stamp); err != nil {
		os.Remove(tmpOut)
		return nil, err
	}
	dir.Discard(dir.UnnumberedPath())
	log.Info("added page numbers", "first_numbered_page", frontPages+1, "numbered", total-frontPages)

	if err := os.Rename(tmpOut, opts.Output); err != nil {
		os.Remove(tmpOut)
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	ok = true
	report.Output = opts.Output
	report.TotalPages = total
	b.finish(report, started, log)
	log.Info("successfully created combined PDF", "path", opts.Output, "pages", total)
	return report, nil
}

// finish stamps the duration and logs the skip summary.
func (b *Builder) finish(report *Report, started time.Time, log *slog.Logger) *Report {
	report.Duration = time.Since(started).Round(time.Millisecond).String()
	if len(report.Skipped) == 0 {
		return report
	}
	log.Warn("some files were skipped", "count", len(report.Skipped))
	for _, s := range report.Skipped {
		log.Warn("skipped", "file", s.Filename, "stage", s.Stage, "reason", s.Reason)
	}
	return report
}

// writeFile creates path and hands it to fn.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
