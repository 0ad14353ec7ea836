package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrEmptyCorpus is returned when no document matches the loader configuration.
var ErrEmptyCorpus = errors.New("corpus: no documents found")

// Document is one plain-text file of the corpus. Its position in the slice
// returned by Load is its identity in the vector index.
type Document struct {
	Name    string // File name, relative to the corpus directory.
	Content string // Full UTF-8 text.
}

// LoaderConfig controls the behaviour of the Load function.
type LoaderConfig struct {
	Dir     string   // Folder holding the documents.
	Include []string // Glob patterns matched against file names (empty = all).
}

// Load reads every regular file directly inside config.Dir whose name matches
// the include patterns, ordered by file name. Subdirectories are not visited.
func Load(config LoaderConfig) ([]Document, error) {
	entries, err := os.ReadDir(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: read dir %s: %w", config.Dir, err)
	}

	// os.ReadDir returns entries sorted by file name.
	var docs []Document
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if !matchesInclude(name, config.Include) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(config.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("corpus: read %s: %w", name, err)
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("corpus: %s is not valid UTF-8", name)
		}

		docs = append(docs, Document{Name: name, Content: string(data)})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyCorpus, config.Dir)
	}
	return docs, nil
}

// matchesInclude reports whether name matches any of the patterns.
// If patterns is empty, everything is included.
func matchesInclude(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(filepath.ToSlash(pattern), name); err == nil && matched {
			return true
		}
	}
	return false
}
