package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/notebind/internal/config"
	"github.com/jackzampolin/notebind/internal/output"
	"github.com/jackzampolin/notebind/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool

	format = output.FormatYAML
)

var rootCmd = &cobra.Command{
	Use:   "notebind",
	Short: "Bind numbered lecture-note PDFs into one document",
	Long: `Notebind combines a directory of lecture-note PDFs into a single document.

Files are named "<N>. <Title>.pdf", optionally with " - part <M>" or
" - notes" before the extension. The combined PDF contains:
  - A title page
  - A table of contents with page numbers and dot leaders
  - Every lecture in order, with page numbers starting at 1`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.notebind/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Validate the output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		format = f
		return nil
	}

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger returns the progress logger. Logs go to stderr so that
// stdout carries only the structured report.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// newPrinter returns a printer on the command's stdout in the --output format.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), format)
}

// loadConfig loads the configuration and points it at dir when one was
// given on the command line.
func loadConfig(args []string) (*config.Manager, *config.Config, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := mgr.Get()
	if len(args) > 0 {
		cfg.SourceDir = args[0]
	}
	return mgr, cfg, nil
}
