package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const dmaicYAML = `id: dmaic
title: DMAIC
description: Six Sigma improvement cycle.
version: 1.0.0
steps:
  - name: Define
    goals: [Problem statement, Scope, Customer CTQs, Team]
    best_practices: [Be specific]
    prompts_for_user: [Describe the problem you want to fix.]
  - name: Measure
    goals: [Baseline]
`

func TestLoadDir_ParsesLessons(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dmaic.yaml", dmaicYAML)

	cat, warnings := LoadDir(dir)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	l := cat.Get("dmaic")
	if l == nil {
		t.Fatal("expected dmaic lesson")
	}
	if l.Title != "DMAIC" || len(l.Steps) != 2 {
		t.Fatalf("lesson = %+v", l)
	}
	step := l.Steps[0]
	if step.Name != "Define" || len(step.Goals) != 4 || step.BestPractices[0] != "Be specific" {
		t.Errorf("step 0 = %+v", step)
	}
	if step.PromptsForUser[0] != "Describe the problem you want to fix." {
		t.Errorf("prompts = %v", step.PromptsForUser)
	}
	if l.Source != filepath.Join(dir, "dmaic.yaml") {
		t.Errorf("source = %q", l.Source)
	}
}

func TestLoadDir_MultiDocumentAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "many.yml", `id: a
title: Alpha
---
title: No id, skipped silently
---
id: b
title: Beta
steps: "not a list"
---
id: c
title: Gamma
`)
	writeFile(t, dir, "broken.yaml", "id: [unterminated\n")
	writeFile(t, dir, "notes.txt", "id: ignored")

	cat, warnings := LoadDir(dir)
	if len(cat) != 2 || cat.Get("a") == nil || cat.Get("c") == nil {
		t.Fatalf("catalog = %v", cat)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want schema + syntax", warnings)
	}
	for _, w := range warnings {
		if _, ok := w.(*DocumentError); !ok {
			t.Errorf("warning %T is not a *DocumentError", w)
		}
	}
	if !strings.Contains(warnings[0].Error(), "broken.yaml") {
		t.Errorf("first warning should be for broken.yaml (sorted paths): %v", warnings[0])
	}
}

func TestLoadDir_NullOrBlankIDSkippedSilently(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.yaml", `id: null
title: Null id
---
id:
title: Empty id
---
id: ""
title: Empty string id
---
id: "   "
title: Blank id
---
id: kept
title: Kept
`)

	cat, warnings := LoadDir(dir)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(cat) != 1 || cat.Get("kept") == nil {
		t.Fatalf("catalog = %v", cat)
	}
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	cat, warnings := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if len(cat) != 0 || len(warnings) != 0 {
		t.Fatalf("cat = %v, warnings = %v", cat, warnings)
	}
}

func TestLoadDir_DuplicateIDsPreferHigherVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: x\ntitle: Old\nversion: 1.2.0\n")
	writeFile(t, dir, "b.yaml", "id: x\ntitle: New\nversion: 1.10.0\n")
	writeFile(t, dir, "c.yaml", "id: y\ntitle: First\n")
	writeFile(t, dir, "d.yaml", "id: y\ntitle: Second\n")

	cat, warnings := LoadDir(dir)
	if got := cat.Get("x").Title; got != "New" {
		t.Errorf("x title = %q, want New", got)
	}
	if got := cat.Get("y").Title; got != "First" {
		t.Errorf("y title = %q, want First (equal versions keep first file)", got)
	}
	if len(warnings) != 2 {
		t.Errorf("expected one warning per duplicate, got %v", warnings)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "v1.0.0", 0},
		{"2", "1.9.9", 1},
		{"", "0.0.1", -1},
		{"garbage", "0.1", -1},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := compareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSortedAndDisplayTitle(t *testing.T) {
	cat := Catalog{
		"z":  {ID: "z", Title: "alpha"},
		"a":  {ID: "a", Title: "Beta"},
		"id": {ID: "id"},
		"b":  {ID: "b", Title: "Alpha"},
	}

	var got []string
	for _, l := range cat.Sorted() {
		got = append(got, l.ID)
	}
	want := []string{"b", "z", "a", "id"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sorted = %v, want %v", got, want)
	}
	if cat.Get("id").DisplayTitle() != "id" {
		t.Errorf("display title fallback = %q", cat.Get("id").DisplayTitle())
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dmaic.yaml", dmaicYAML)

	cat := DirLoader{Dir: dir}.Load()
	if cat.Get("dmaic") == nil {
		t.Fatal("expected dmaic")
	}
}
