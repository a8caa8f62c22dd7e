// Package output prints build reports, plans and configuration. Documents
// go to the printer's writer (stdout for the CLI); progress logs stay on
// stderr so the two never interleave.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Format is a structured output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates the --output flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: want yaml or json", s)
	}
}

// Printer writes documents in one format.
//
// A stream printer is for long-running commands that emit one document per
// event, such as watch: YAML documents are separated by "---" and JSON is
// written one compact object per line.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	format  Format
	stream  bool
	printed int
}

// NewPrinter returns a Printer for single documents.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// NewStreamPrinter returns a Printer for a sequence of documents.
func NewStreamPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format, stream: true}
}

// Print writes v as the next document. Safe for concurrent use.
func (p *Printer) Print(v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	switch p.format {
	case FormatJSON:
		err = p.printJSON(v)
	case FormatYAML:
		err = p.printYAML(v)
	default:
		err = fmt.Errorf("unknown output format: %s", p.format)
	}
	if err != nil {
		return err
	}
	p.printed++
	return nil
}

func (p *Printer) printJSON(v any) error {
	enc := json.NewEncoder(p.w)
	if !p.stream {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func (p *Printer) printYAML(v any) error {
	if p.stream && p.printed > 0 {
		if _, err := io.WriteString(p.w, "---\n"); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
