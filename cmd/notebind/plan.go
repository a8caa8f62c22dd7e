package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/notebind/internal/source"
)

// planEntry is one document in the order it will be bound.
type planEntry struct {
	Position int    `json:"position" yaml:"position"`
	Filename string `json:"filename" yaml:"filename"`
	Title    string `json:"toc_title" yaml:"toc_title"`
	Level    int    `json:"level" yaml:"level"`
}

type plan struct {
	SourceDir string        `json:"source_dir" yaml:"source_dir"`
	Documents []planEntry   `json:"documents" yaml:"documents"`
	Skipped   []source.Skip `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// buildPlan lists docs in binding order with their ToC titles.
func buildPlan(dir string, docs []source.Document, skips []source.Skip) plan {
	p := plan{SourceDir: dir, Documents: make([]planEntry, 0, len(docs)), Skipped: skips}
	for i, doc := range docs {
		p.Documents = append(p.Documents, planEntry{
			Position: i + 1,
			Filename: doc.Filename,
			Title:    doc.DisplayTitle(),
			Level:    doc.Level(),
		})
	}
	return p
}

var planCmd = &cobra.Command{
	Use:   "plan [dir]",
	Short: "Show the order in which files would be bound",
	Long: `Parse and sort the file names in a directory without reading any PDF.

The plan lists every document in binding order with the title it gets in
the table of contents, followed by the files that will be skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		docs, skips, err := source.Scan(cfg.SourceDir, newLogger())
		if err != nil {
			return err
		}
		return newPrinter(cmd).Print(buildPlan(cfg.SourceDir, docs, skips))
	},
}
