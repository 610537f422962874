// Package export renders completed lessons into downloadable slide decks.
package export

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// StepRecord is what the learner produced for one lesson step.
type StepRecord struct {
	Step          string   `json:"step"`
	UserInput     string   `json:"user_input"`
	Goals         []string `json:"goals"`
	BestPractices []string `json:"best_practices"`
}

// Deck is the input for one export.
type Deck struct {
	LessonID string
	Title    string
	Records  []StepRecord
}

// Exporter turns a finished lesson into an artifact and returns its path.
type Exporter interface {
	Export(ctx context.Context, deck Deck) (string, error)
}

//go:embed deck.md.tmpl
var deckTemplateText string

var deckTemplate = template.Must(template.New("deck").Funcs(template.FuncMap{
	"inc":         func(i int) int { return i + 1 },
	"orDash":      orDash,
	"indentQuote": indentQuote,
}).Parse(deckTemplateText))

// DeckExporter writes Marp-flavoured Markdown slide decks into Dir.
type DeckExporter struct {
	Dir string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewDeckExporter creates an exporter writing into dir.
func NewDeckExporter(dir string) *DeckExporter {
	return &DeckExporter{Dir: dir}
}

type deckView struct {
	Title     string
	Generated string
	Records   []StepRecord
}

func (e *DeckExporter) Export(ctx context.Context, deck Deck) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	title := strings.TrimSpace(deck.Title)
	if title == "" {
		title = deck.LessonID
	}

	var buf bytes.Buffer
	err := deckTemplate.Execute(&buf, deckView{
		Title:     title,
		Generated: now.Format("2006-01-02 15:04"),
		Records:   deck.Records,
	})
	if err != nil {
		return "", fmt.Errorf("render deck: %w", err)
	}

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}
	name := fmt.Sprintf("%s_summary_%s.md", fileSlug(deck.LessonID), now.Format("20060102_150405"))
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write deck: %w", err)
	}
	return path, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func fileSlug(id string) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(id), "-"), "-")
	if slug == "" {
		return "lesson"
	}
	return slug
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return strings.TrimSpace(s)
}

// indentQuote renders multi-line input as a Markdown block quote.
func indentQuote(s string) string {
	lines := strings.Split(orDash(s), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
