package assemble

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/notebind/internal/source"
	"github.com/jackzampolin/notebind/internal/testutil"
	"github.com/jackzampolin/notebind/internal/workdir"
)

func lectureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WritePDF(t, dir, "2. Duality.pdf", 2)
	testutil.WritePDF(t, dir, "1. Intro - part 2.pdf", 1)
	testutil.WritePDF(t, dir, "1. Intro.pdf", 3)
	testutil.WritePDF(t, dir, "1. Intro - notes.pdf", 1)
	testutil.WritePDF(t, dir, "intro.pdf", 1)
	testutil.WriteCorruptPDF(t, dir, "3. Broken.pdf")
	testutil.WriteFile(t, dir, "syllabus.txt", "not a pdf")
	return dir
}

var (
	trailingNumber = regexp.MustCompile(`(\d+)$`)
	formDraw       = regexp.MustCompile(`/\S+\s+Do\b`)
	literalShow    = regexp.MustCompile(`\(([^()]*)\)\s*Tj`)
	hexShow        = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
)

// stampedPages reports, per physical page, whether its content stream
// draws a form XObject. Page numbers are the only forms in the output.
func stampedPages(t *testing.T, path string) map[int]bool {
	t.Helper()

	dir := t.TempDir()
	if err := api.ExtractContentFile(path, dir, nil, nil); err != nil {
		t.Fatalf("failed to extract content: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	stamped := make(map[int]bool)
	for _, e := range entries {
		m := trailingNumber.FindStringSubmatch(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if m == nil {
			t.Fatalf("unexpected content file %s", e.Name())
		}
		page, _ := strconv.Atoi(m[1])
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		stamped[page] = stamped[page] || formDraw.Match(data)
	}
	return stamped
}

// stampTexts collects the numbers shown by every form XObject in path.
func stampTexts(t *testing.T, path string) map[string]bool {
	t.Helper()

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	texts := make(map[string]bool)
	for _, entry := range ctx.XRefTable.Table {
		if entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if st := sd.Subtype(); st == nil || *st != "Form" {
			continue
		}
		if err := sd.Decode(); err != nil {
			t.Fatalf("failed to decode form: %v", err)
		}
		for _, m := range literalShow.FindAllSubmatch(sd.Content, -1) {
			addNumber(texts, string(m[1]))
		}
		for _, m := range hexShow.FindAllSubmatch(sd.Content, -1) {
			if b, err := hex.DecodeString(string(m[1])); err == nil {
				// UTF-16BE strings carry a zero high byte per digit.
				addNumber(texts, strings.ReplaceAll(string(b), "\x00", ""))
			}
		}
	}
	return texts
}

func addNumber(set map[string]bool, s string) {
	if _, err := strconv.Atoi(s); err == nil {
		set[s] = true
	}
}

func TestRun(t *testing.T) {
	opts := testOptions(t, lectureDir(t))

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantOrder := []string{"1. Intro.pdf", "1. Intro - notes.pdf", "1. Intro - part 2.pdf", "2. Duality.pdf"}
	if len(report.Included) != len(wantOrder) {
		t.Fatalf("expected %d included, got %d", len(wantOrder), len(report.Included))
	}
	for i, doc := range report.Included {
		if doc.Filename != wantOrder[i] {
			t.Errorf("index %d: got %q, want %q", i, doc.Filename, wantOrder[i])
		}
	}

	if report.ContentPages != 7 {
		t.Errorf("expected 7 content pages, got %d", report.ContentPages)
	}
	if report.TOCPages != 1 {
		t.Errorf("expected 1 ToC page, got %d", report.TOCPages)
	}
	if !report.TOCConverged {
		t.Error("expected ToC to converge")
	}
	if report.TotalPages != 1+report.TOCPages+report.ContentPages {
		t.Errorf("total %d != 1 + %d + %d", report.TotalPages, report.TOCPages, report.ContentPages)
	}

	// First entry lands right after the title page and the ToC.
	if got := absoluteLabel(report.TOCPages)(report.Entries[0]); got != "3" {
		t.Errorf("expected first entry on page 3, got %s", got)
	}

	stages := map[string]string{}
	for _, s := range report.Skipped {
		stages[s.Filename] = s.Stage
	}
	if stages["intro.pdf"] != source.StageParse {
		t.Errorf("expected parse skip for intro.pdf, got %+v", report.Skipped)
	}
	if stages["3. Broken.pdf"] != source.StageRead {
		t.Errorf("expected read skip for broken file, got %+v", report.Skipped)
	}
	if _, ok := stages["syllabus.txt"]; ok {
		t.Error("non-pdf files should be ignored, not skipped")
	}

	n, err := pageCount(opts.Output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if n != report.TotalPages {
		t.Errorf("output has %d pages, report says %d", n, report.TotalPages)
	}

	frontPages := 1 + report.TOCPages
	stamped := stampedPages(t, opts.Output)
	for page := 1; page <= report.TotalPages; page++ {
		if want := page > frontPages; stamped[page] != want {
			t.Errorf("page %d: stamped = %v, want %v", page, stamped[page], want)
		}
	}
	texts := stampTexts(t, opts.Output)
	if len(texts) != report.ContentPages {
		t.Errorf("expected %d distinct page numbers, got %v", report.ContentPages, texts)
	}
	for n := 1; n <= report.ContentPages; n++ {
		if !texts[strconv.Itoa(n)] {
			t.Errorf("page number %d not stamped, got %v", n, texts)
		}
	}

	if _, err := os.Stat(opts.Output + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary output should be gone")
	}
	left, err := os.ReadDir(opts.WorkRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("expected work root to be empty, found %d entries", len(left))
	}
}

func TestRun_Repeatable(t *testing.T) {
	dir := lectureDir(t)

	first, err := Run(context.Background(), testOptions(t, dir))
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(context.Background(), testOptions(t, dir))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.TotalPages != second.TotalPages || first.TOCPages != second.TOCPages {
		t.Errorf("page counts differ: %d/%d vs %d/%d", first.TotalPages, first.TOCPages, second.TotalPages, second.TOCPages)
	}
	for i := range first.Entries {
		if first.Entries[i] != second.Entries[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, first.Entries[i], second.Entries[i])
		}
	}
	if first.RunID == second.RunID {
		t.Error("expected distinct run IDs")
	}
}

func TestRun_LongTOC(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 80; i++ {
		testutil.WritePDF(t, dir, fmt.Sprintf("%d. Lecture on a fairly descriptive topic.pdf", i), 1)
	}
	opts := testOptions(t, dir)

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.TOCPages < 2 {
		t.Errorf("expected a multi-page ToC, got %d", report.TOCPages)
	}
	n, err := pageCount(opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1+report.TOCPages+80 {
		t.Errorf("expected %d pages, got %d", 1+report.TOCPages+80, n)
	}
}

func TestRun_NothingToDo(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		opts := testOptions(t, t.TempDir())

		report, err := Run(context.Background(), opts)
		if !errors.Is(err, ErrNothingToDo) {
			t.Fatalf("expected ErrNothingToDo, got %v", err)
		}
		if report == nil {
			t.Fatal("expected a report")
		}
		if _, err := os.Stat(opts.Output); !os.IsNotExist(err) {
			t.Error("no output should be written")
		}
	})

	t.Run("only unparsable files", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WritePDF(t, dir, "intro.pdf", 1)
		testutil.WritePDF(t, dir, "notes.pdf", 1)

		report, err := Run(context.Background(), testOptions(t, dir))
		if !errors.Is(err, ErrNothingToDo) {
			t.Fatalf("expected ErrNothingToDo, got %v", err)
		}
		if len(report.Skipped) != 2 {
			t.Errorf("expected 2 skips, got %+v", report.Skipped)
		}
	})

	t.Run("every file unreadable", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteCorruptPDF(t, dir, "1. Intro.pdf")
		opts := testOptions(t, dir)

		report, err := Run(context.Background(), opts)
		if !errors.Is(err, ErrNothingToDo) {
			t.Fatalf("expected ErrNothingToDo, got %v", err)
		}
		if len(report.Skipped) != 1 || report.Skipped[0].Stage != source.StageRead {
			t.Errorf("expected one read skip, got %+v", report.Skipped)
		}
		left, _ := os.ReadDir(opts.WorkRoot)
		if len(left) != 0 {
			t.Error("work directory should be removed")
		}
	})
}

func TestRun_KeepWorkDir(t *testing.T) {
	for _, keep := range []bool{false, true} {
		t.Run(fmt.Sprintf("keep=%v", keep), func(t *testing.T) {
			opts := testOptions(t, lectureDir(t))
			opts.KeepWorkDir = keep

			// A regular file where the output directory should be makes the
			// final write fail after every intermediate file exists.
			blocker := testutil.WriteFile(t, t.TempDir(), "blocker", "")
			opts.Output = filepath.Join(blocker, "combined.pdf")

			if _, err := Run(context.Background(), opts); err == nil {
				t.Fatal("expected the build to fail")
			}

			left, err := os.ReadDir(opts.WorkRoot)
			if err != nil {
				t.Fatal(err)
			}
			if !keep {
				if len(left) != 0 {
					t.Errorf("expected work root to be empty, found %d entries", len(left))
				}
				return
			}
			if len(left) != 1 {
				t.Fatalf("expected one kept work directory, found %d", len(left))
			}
			kept := filepath.Join(opts.WorkRoot, left[0].Name(), workdir.UnnumberedFile)
			if _, err := os.Stat(kept); err != nil {
				t.Errorf("expected assembled PDF in kept work directory: %v", err)
			}
		})
	}
}

func TestRun_Fatal(t *testing.T) {
	t.Run("missing source directory", func(t *testing.T) {
		_, err := Run(context.Background(), testOptions(t, filepath.Join(t.TempDir(), "missing")))
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, ErrNothingToDo) {
			t.Error("missing directory must be fatal, not a no-op")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, testOptions(t, lectureDir(t)))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
