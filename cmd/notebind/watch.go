package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/notebind/internal/config"
	"github.com/jackzampolin/notebind/internal/output"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Rebuild whenever the lecture PDFs change",
	Long: `Build once, then rebuild every time a PDF in the directory is added,
changed, renamed or removed. Bursts of changes are collapsed into a single
rebuild after watch.debounce_ms of quiet. Edits to the config file also
trigger a rebuild.

Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		mgr, cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		flags.apply(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		sourceDir := cfg.SourceDir
		printer := output.NewStreamPrinter(cmd.OutOrStdout(), format)

		build := func(ctx context.Context) {
			cfg := mgr.Get()
			cfg.SourceDir = sourceDir
			flags.apply(cmd, cfg)
			report, err := runBuild(ctx, cfg, logger)
			if err != nil || report == nil {
				return
			}
			if err := printer.Print(report); err != nil {
				logger.Error("failed to print report", "error", err)
			}
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(sourceDir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", sourceDir, err)
		}

		triggers := make(chan string, 1)
		go forwardEvents(ctx, watcher, cfg.Output, triggers, logger)

		mgr.OnChange(func(*config.Config) {
			select {
			case triggers <- "config":
			default:
			}
		})
		mgr.WatchConfig()

		build(ctx)
		logger.Info("watching for changes", "source_dir", sourceDir, "config", mgr.ConfigFile())

		loop := rebuildLoop{
			debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
			build:    build,
			logger:   logger,
		}
		if err := loop.run(ctx, triggers); err != nil && ctx.Err() == nil {
			return err
		}
		logger.Info("stopped watching")
		return nil
	},
}

func init() {
	addBuildFlags(watchCmd)
}

// forwardEvents sends the name of every relevant change to triggers until
// ctx is done or the watcher closes.
func forwardEvents(ctx context.Context, w *fsnotify.Watcher, outputPath string, triggers chan<- string, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !relevant(ev, outputPath) {
				continue
			}
			select {
			case triggers <- ev.Name:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether ev touches a source PDF. The build's own output
// is ignored so a rebuild does not trigger another.
func relevant(ev fsnotify.Event, outputPath string) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
		return false
	}
	if outputPath != "" && samePath(ev.Name, outputPath) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// rebuildLoop collapses bursts of triggers into one build. Builds run on
// the loop goroutine, so they never overlap.
type rebuildLoop struct {
	debounce time.Duration
	build    func(context.Context)
	logger   *slog.Logger
}

// run blocks until ctx is done or triggers is closed.
func (l rebuildLoop) run(ctx context.Context, triggers <-chan string) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name, ok := <-triggers:
			if !ok {
				return nil
			}
			l.logger.Debug("change detected", "path", name)
			fire = time.After(l.debounce)
		case <-fire:
			fire = nil
			l.logger.Info("rebuilding")
			l.build(ctx)
		}
	}
}
