package beattable

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/beatgrid/internal/scene"
	"github.com/roach88/beatgrid/internal/textfile"
)

// Parse reads comma-separated records. Rows may have any number of fields
// and stray quotes are tolerated.
func Parse(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(textfile.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

// Unmarshal parses data and decodes it against reg.
func Unmarshal(data []byte, reg *scene.Registry) (*Table, DecodeStats, error) {
	records, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, DecodeStats{}, err
	}
	t, stats := Decode(records, reg)
	return t, stats, nil
}

// Marshal encodes t in the column-major layout with CRLF line endings.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.WriteAll(Encode(t)); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile loads the table stored at path. A missing file yields an empty
// table rather than an error.
func ReadFile(path string, reg *scene.Registry) (*Table, DecodeStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(reg.Names()), DecodeStats{Layout: LayoutEmpty}, nil
		}
		return nil, DecodeStats{}, fmt.Errorf("open beat table: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, DecodeStats{}, fmt.Errorf("read beat table %s: %w", path, err)
	}
	t, stats := Decode(records, reg)
	return t, stats, nil
}

// WriteFile rewrites path with the encoded table in one atomic step.
func WriteFile(path string, t *Table) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := textfile.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("write beat table: %w", err)
	}
	return nil
}
