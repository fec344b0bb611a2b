// Package textfile reads UTF-8 text files that may carry a byte order mark
// and rewrites whole files atomically.
package textfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type readCloser struct {
	io.Reader
	f *os.File
}

func (r *readCloser) Close() error { return r.f.Close() }

// Open opens path for reading as UTF-8 text. A leading BOM (UTF-8 or UTF-16)
// is consumed and invalid byte sequences are replaced with U+FFFD, so files
// saved by spreadsheet tools decode the same as plain ones.
//
// The returned error satisfies errors.Is(err, os.ErrNotExist) for missing files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &readCloser{Reader: NewReader(f), f: f}, nil
}

// NewReader wraps r with BOM detection and UTF-8 validation.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadAll reads the whole file through NewReader.
func ReadAll(path string) ([]byte, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// WriteAtomic replaces path with data. The bytes go to a temporary file in
// the same directory which is synced and then renamed over the target, so a
// reader never sees a partially written file.
func WriteAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
