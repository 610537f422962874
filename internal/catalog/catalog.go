// Package catalog loads lesson definitions from a directory of YAML files.
package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// Lesson is an immutable lesson definition.
type Lesson struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Version     string `yaml:"version" json:"version,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`

	// Source is the file the lesson was loaded from.
	Source string `yaml:"-" json:"-"`
}

// Step is one coaching unit of a lesson.
type Step struct {
	Name           string   `yaml:"name" json:"name"`
	Goals          []string `yaml:"goals" json:"goals"`
	BestPractices  []string `yaml:"best_practices" json:"best_practices"`
	PromptsForUser []string `yaml:"prompts_for_user" json:"prompts_for_user"`
}

// DisplayTitle returns the title, falling back to the id.
func (l *Lesson) DisplayTitle() string {
	if t := strings.TrimSpace(l.Title); t != "" {
		return t
	}
	return l.ID
}

// Step returns the step at index i, or false when i is out of range.
func (l *Lesson) Step(i int) (Step, bool) {
	if l == nil || i < 0 || i >= len(l.Steps) {
		return Step{}, false
	}
	return l.Steps[i], true
}

// Catalog maps lesson id to definition.
type Catalog map[string]*Lesson

// Sorted returns the lessons ordered by lowercased display title, then id.
func (c Catalog) Sorted() []*Lesson {
	out := make([]*Lesson, 0, len(c))
	for _, l := range c {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *Lesson) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.DisplayTitle()), strings.ToLower(b.DisplayTitle())),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

// Get returns the lesson with the given id, or nil.
func (c Catalog) Get(id string) *Lesson {
	return c[id]
}
