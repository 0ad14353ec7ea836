package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/campusbot/internal/crawler"
)

// FileSink writes each record as an indented JSON file under a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates a FileSink. The directory is created on first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Dir returns the output directory.
func (f *FileSink) Dir() string { return f.dir }

// Write stores rec as dir/name, replacing any existing file. Non-ASCII
// text and HTML characters are written as-is.
func (f *FileSink) Write(_ context.Context, name string, rec crawler.Record) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(f.dir, filepath.Base(name))
	if err := os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (f *FileSink) Close(context.Context) error { return nil }
