// Package scene loads the ordered list of scene identifiers that defines which
// beat columns exist and the order they are written in.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/beatgrid/internal/textfile"
)

var (
	// ErrNotFound is returned when the scene list file does not exist.
	ErrNotFound = errors.New("scene list not found")

	// ErrEmpty is returned when the scene list file holds no identifiers.
	ErrEmpty = errors.New("scene list is empty")
)

// Registry is an immutable, ordered set of scene identifiers.
type Registry struct {
	names []string
	index map[string]int
}

// Normalize trims surrounding whitespace and applies Unicode NFC so that
// identifiers typed on different systems compare equal.
func Normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// New builds a registry from names. Names are normalized, blanks are skipped
// and a repeated name keeps its first position.
func New(names []string) *Registry {
	r := &Registry{index: make(map[string]int, len(names))}
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		if _, dup := r.index[n]; dup {
			continue
		}
		r.index[n] = len(r.names)
		r.names = append(r.names, n)
	}
	return r
}

// Parse reads one identifier per line. Lines have no length limit.
func Parse(data []byte) *Registry {
	lines := bytes.Split(data, []byte("\n"))
	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = string(line)
	}
	return New(names)
}

// Load reads the registry from path. It is read fresh on every call.
func Load(path string) (*Registry, error) {
	data, err := textfile.ReadAll(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read scene list: %w", err)
	}
	r := Parse(data)
	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return r, nil
}

// WriteFile writes names one per line, replacing path.
func WriteFile(path string, r *Registry) error {
	var buf bytes.Buffer
	for _, n := range r.names {
		buf.WriteString(n)
		buf.WriteByte('\n')
	}
	if err := textfile.WriteAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write scene list: %w", err)
	}
	return nil
}

// Names returns a copy of the identifiers in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of scenes.
func (r *Registry) Len() int { return len(r.names) }

// Contains reports whether name (already normalized) is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Index returns the column position of name, or -1.
func (r *Registry) Index(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}
