package server

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var errOutsideRoot = errors.New("path escapes media directory")

// mediaDir is a flat directory of playable files filtered by extension.
type mediaDir struct {
	root string
	exts []string
}

func newMediaDir(root string, exts []string) mediaDir {
	lower := make([]string, 0, len(exts))
	for _, e := range exts {
		lower = append(lower, strings.ToLower(e))
	}
	return mediaDir{root: root, exts: lower}
}

func (m mediaDir) accepts(name string) bool {
	return slices.Contains(m.exts, strings.ToLower(filepath.Ext(name)))
}

// list returns the sorted names of regular files directly under root whose
// extension is accepted. A missing directory lists as empty.
func (m mediaDir) list() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list media: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !m.accepts(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// resolve maps a request name to a file path inside root. Symlinks are
// followed before the containment check.
func (m mediaDir) resolve(name string) (string, error) {
	root, err := filepath.Abs(m.root)
	if err != nil {
		return "", err
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return "", err
	}

	target, err := filepath.EvalSymlinks(filepath.Join(root, filepath.FromSlash(name)))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	if !m.accepts(target) {
		return "", fmt.Errorf("extension %q not served", filepath.Ext(target))
	}
	return target, nil
}

// open resolves name and opens it if it is a regular file.
func (m mediaDir) open(name string) (*os.File, os.FileInfo, error) {
	path, err := m.resolve(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%s is not a regular file", name)
	}
	return f, info, nil
}

func mediaType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if ext == ".wav" {
		return "audio/wav"
	}
	return "application/octet-stream"
}
