package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed lesson.schema.json
var lessonSchemaJSON []byte

const lessonSchemaURL = "schema://lesson.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func lessonSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(lessonSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse lesson schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(lessonSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add lesson schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(lessonSchemaURL)
	})
	return compiledSchema, schemaErr
}

// Loader supplies a lesson catalog.
type Loader interface {
	Load() Catalog
}

// DirLoader loads lessons from Dir, logging every skipped document.
type DirLoader struct {
	Dir    string
	Logger *slog.Logger
}

func (d DirLoader) Load() Catalog {
	cat, warnings := LoadDir(d.Dir)
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range warnings {
		logger.Warn("skipping lesson document", "error", w)
	}
	logger.Debug("loaded lesson catalog", "dir", d.Dir, "lessons", len(cat))
	return cat
}

// StaticLoader returns a fixed catalog.
type StaticLoader Catalog

func (s StaticLoader) Load() Catalog { return Catalog(s) }

// DocumentError describes a lesson document that was skipped.
type DocumentError struct {
	Path  string
	Index int // 0-based document index within the file; -1 for file-level errors
	Err   error
}

func (e *DocumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s (document %d): %v", e.Path, e.Index+1, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// LoadDir reads every *.yaml / *.yml file in dir. Each YAML document is one
// lesson. Documents without an id are skipped silently; unreadable, malformed
// or schema-violating documents are skipped and reported in the returned
// warnings. A missing directory yields an empty catalog. Loading never fails.
//
// When two documents share an id, the higher semantic version wins; ties keep
// the first in lexical path order.
func LoadDir(dir string) (Catalog, []error) {
	cat := Catalog{}
	var warnings []error

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			warnings = append(warnings, &DocumentError{Path: dir, Index: -1, Err: err})
		}
		return cat, warnings
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	for _, path := range paths {
		lessons, errs := loadFile(path)
		warnings = append(warnings, errs...)
		for _, l := range lessons {
			prev, dup := cat[l.ID]
			if !dup {
				cat[l.ID] = l
				continue
			}
			winner := prev
			if compareVersions(l.Version, prev.Version) > 0 {
				winner = l
			}
			cat[l.ID] = winner
			warnings = append(warnings, fmt.Errorf("duplicate lesson id %q in %s and %s: using %s",
				l.ID, prev.Source, l.Source, winner.Source))
		}
	}

	return cat, warnings
}

func loadFile(path string) ([]*Lesson, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{&DocumentError{Path: path, Index: -1, Err: err}}
	}
	defer f.Close()

	var (
		lessons  []*Lesson
		warnings []error
	)
	dec := yaml.NewDecoder(f)
	for i := 0; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The decoder can't resync after a syntax error.
			warnings = append(warnings, &DocumentError{Path: path, Index: i, Err: err})
			break
		}

		lesson, err := decodeLesson(&node)
		if err != nil {
			warnings = append(warnings, &DocumentError{Path: path, Index: i, Err: err})
			continue
		}
		if lesson == nil {
			continue
		}
		lesson.Source = path
		lessons = append(lessons, lesson)
	}
	return lessons, warnings
}

// decodeLesson validates one document and decodes it. It returns nil, nil
// for documents that carry no id; a null or blank id counts as none.
func decodeLesson(node *yaml.Node) (*Lesson, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("document is a %T, not a mapping", raw)
	}
	if !hasID(doc) {
		return nil, nil
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var lesson Lesson
	if err := node.Decode(&lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func hasID(doc map[string]any) bool {
	switch id := doc["id"].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(id) != ""
	default:
		return true
	}
}

func validateDocument(doc map[string]any) error {
	schema, err := lessonSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so numbers and nested maps take the shapes
	// the validator expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("convert document: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid lesson: %w", err)
	}
	return nil
}

// compareVersions orders lesson versions semantically. Missing or invalid
// versions rank lowest.
func compareVersions(a, b string) int {
	return semver.Compare(canonicalVersion(a), canonicalVersion(b))
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
