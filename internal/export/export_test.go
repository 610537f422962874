package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestDeckExporter_WritesDeck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := &DeckExporter{Dir: dir, Now: fixedNow}

	path, err := e.Export(context.Background(), Deck{
		LessonID: "dmaic",
		Title:    "DMAIC",
		Records: []StepRecord{
			{Step: "Define", UserInput: "Late deliveries\nin region 3", Goals: []string{"Problem statement"}, BestPractices: []string{"Be specific"}},
			{Step: "Measure"},
		},
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if want := filepath.Join(dir, "dmaic_summary_20260314_092653.md"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	deck := string(b)

	for _, want := range []string{
		"marp: true",
		"# DMAIC Summary",
		"Generated 2026-03-14 09:26",
		"Your DMAIC session at a glance",
		"1. Define\n2. Measure",
		"## Define",
		"> Late deliveries\n> in region 3",
		"- Problem statement",
		"- Be specific",
		"## Measure",
		"> —",
	} {
		if !strings.Contains(deck, want) {
			t.Errorf("deck missing %q:\n%s", want, deck)
		}
	}
	if got := strings.Count(deck, "\n---\n"); got != 5 {
		t.Errorf("slide separators = %d, want 5", got)
	}
}

func TestDeckExporter_NoRecords(t *testing.T) {
	e := &DeckExporter{Dir: t.TempDir(), Now: fixedNow}

	path, err := e.Export(context.Background(), Deck{LessonID: "5 Whys!"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if base := filepath.Base(path); !strings.HasPrefix(base, "5-whys_summary_") {
		t.Errorf("file name = %q", base)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "_No steps were recorded._") {
		t.Errorf("expected empty-steps note:\n%s", b)
	}
	if !strings.Contains(string(b), "# 5 Whys! Summary") {
		t.Errorf("expected title to fall back to the lesson id:\n%s", b)
	}
}

func TestDeckExporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&DeckExporter{Dir: t.TempDir()}).Export(ctx, Deck{LessonID: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileSlug(t *testing.T) {
	tests := map[string]string{
		"dmaic":       "dmaic",
		"Five Whys":   "five-whys",
		"../../etc":   "etc",
		"":            "lesson",
		"lean_5s-101": "lean_5s-101",
	}
	for in, want := range tests {
		if got := fileSlug(in); got != want {
			t.Errorf("fileSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
