package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/notebind/internal/assemble"
	"github.com/jackzampolin/notebind/internal/config"
)

// buildFlags holds per-run overrides shared by build and watch.
type buildFlags struct {
	out         string
	title       string
	author      string
	keepWorkDir bool
}

var flags buildFlags

// apply copies every flag the user set onto cfg.
func (f buildFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("out") {
		cfg.Output = f.out
	}
	if cmd.Flags().Changed("title") {
		cfg.Title = f.title
	}
	if cmd.Flags().Changed("author") {
		cfg.Author = f.author
	}
	if cmd.Flags().Changed("keep-workdir") {
		cfg.KeepWorkDir = f.keepWorkDir
	}
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.out, "out", "", "output PDF path (default from config)")
	cmd.Flags().StringVar(&flags.title, "title", "", "title page heading")
	cmd.Flags().StringVar(&flags.author, "author", "", "title page author line")
	cmd.Flags().BoolVar(&flags.keepWorkDir, "keep-workdir", false, "keep intermediate files when a build fails")
}

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Combine the lecture PDFs in a directory",
	Long: `Combine every numbered lecture PDF in a directory into one document.

Files that cannot be parsed or read are skipped and listed in the report.
When no usable file is found nothing is written.

Examples:
  notebind build                          # Use source_dir from config
  notebind build ./lectures --out all.pdf # Explicit directory and output
  notebind build -o json                  # Print the report as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		_, cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		flags.apply(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		report, err := runBuild(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		if report == nil {
			return nil
		}
		return newPrinter(cmd).Print(report)
	},
}

func init() {
	addBuildFlags(buildCmd)
}

// runBuild runs one build. An empty source directory is not an error:
// it is logged and reported with a nil report.
func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*assemble.Report, error) {
	report, err := assemble.Run(ctx, assemble.OptionsFromConfig(cfg, logger))
	if errors.Is(err, assemble.ErrNothingToDo) {
		logger.Info("nothing to do", "source_dir", cfg.SourceDir, "skipped", len(report.Skipped))
		return nil, nil
	}
	if err != nil {
		logger.Error("build failed", "error", err)
		return nil, err
	}
	return report, nil
}
