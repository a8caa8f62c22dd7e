package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Stages recorded on a Skip.
const (
	StageParse = "parse"
	StageRead  = "read"
)

// Skip records a file that was left out of the run and why.
type Skip struct {
	Filename string `json:"filename" yaml:"filename"`
	Stage    string `json:"stage" yaml:"stage"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Scan lists dir (not recursively) and returns its parsable PDFs in
// merge order. Unparsable PDFs are logged and returned as skips;
// everything that is not a PDF is ignored.
func Scan(dir string, logger *slog.Logger) ([]Document, []Skip, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var (
		docs  []Document
		skips []Skip
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		doc, err := Parse(entry.Name())
		if errors.Is(err, ErrNotPDF) {
			continue
		}
		if err != nil {
			logger.Warn("could not parse filename", "file", entry.Name())
			skips = append(skips, Skip{Filename: entry.Name(), Stage: StageParse, Reason: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}

	Sort(docs)
	return docs, skips, nil
}
