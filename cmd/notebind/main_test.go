package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/notebind/internal/source"
	"github.com/jackzampolin/notebind/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "Combined.pdf")

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"new lecture", fsnotify.Event{Name: filepath.Join(dir, "1. Intro.pdf"), Op: fsnotify.Create}, true},
		{"edited lecture", fsnotify.Event{Name: filepath.Join(dir, "1. Intro.pdf"), Op: fsnotify.Write}, true},
		{"removed lecture", fsnotify.Event{Name: filepath.Join(dir, "2. Duality.PDF"), Op: fsnotify.Remove}, true},
		{"renamed lecture", fsnotify.Event{Name: filepath.Join(dir, "2. Duality.pdf"), Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: filepath.Join(dir, "1. Intro.pdf"), Op: fsnotify.Chmod}, false},
		{"not a pdf", fsnotify.Event{Name: filepath.Join(dir, "syllabus.txt"), Op: fsnotify.Write}, false},
		{"own output", fsnotify.Event{Name: out, Op: fsnotify.Create}, false},
		{"temporary output", fsnotify.Event{Name: out + ".tmp", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevant(tt.ev, out); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestRebuildLoop(t *testing.T) {
	t.Run("burst collapses into one build", func(t *testing.T) {
		builds := make(chan struct{}, 10)
		loop := rebuildLoop{
			debounce: 20 * time.Millisecond,
			build:    func(context.Context) { builds <- struct{}{} },
			logger:   quietLogger(),
		}

		ctx, cancel := context.WithCancel(context.Background())
		triggers := make(chan string)
		done := make(chan error, 1)
		go func() { done <- loop.run(ctx, triggers) }()

		for i := 0; i < 3; i++ {
			triggers <- "1. Intro.pdf"
		}

		select {
		case <-builds:
		case <-time.After(2 * time.Second):
			t.Fatal("expected a build")
		}
		select {
		case <-builds:
			t.Error("expected a single build for the burst")
		case <-time.After(150 * time.Millisecond):
		}

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("closed triggers end the loop", func(t *testing.T) {
		loop := rebuildLoop{debounce: time.Millisecond, build: func(context.Context) {}, logger: quietLogger()}
		triggers := make(chan string)
		close(triggers)
		if err := loop.run(context.Background(), triggers); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestBuildPlan(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePDF(t, dir, "2. Duality.pdf", 1)
	testutil.WritePDF(t, dir, "1. Intro - notes.pdf", 1)
	testutil.WritePDF(t, dir, "1. Intro.pdf", 1)
	testutil.WritePDF(t, dir, "readme.pdf", 1)

	docs, skips, err := source.Scan(dir, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	p := buildPlan(dir, docs, skips)

	want := []planEntry{
		{Position: 1, Filename: "1. Intro.pdf", Title: "Intro", Level: 0},
		{Position: 2, Filename: "1. Intro - notes.pdf", Title: "Intro - Notes", Level: 1},
		{Position: 3, Filename: "2. Duality.pdf", Title: "Duality", Level: 0},
	}
	if len(p.Documents) != len(want) {
		t.Fatalf("expected %d documents, got %+v", len(want), p.Documents)
	}
	for i := range want {
		if p.Documents[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i+1, p.Documents[i], want[i])
		}
	}
	if len(p.Skipped) != 1 || p.Skipped[0].Filename != "readme.pdf" {
		t.Errorf("expected readme.pdf skipped, got %+v", p.Skipped)
	}
}
