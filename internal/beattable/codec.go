package beattable

import (
	"strings"

	"github.com/roach88/beatgrid/internal/scene"
)

// legacyHeader is the first header cell of the row-major layout.
const legacyHeader = "scene"

// Layout identifies which on-disk layout a file was decoded from.
type Layout int

const (
	// LayoutEmpty means there was nothing to decode.
	LayoutEmpty Layout = iota
	// LayoutColumnMajor is one column per scene.
	LayoutColumnMajor
	// LayoutRowMajor is the legacy one row per scene.
	LayoutRowMajor
)

func (l Layout) String() string {
	switch l {
	case LayoutColumnMajor:
		return "column-major"
	case LayoutRowMajor:
		return "row-major"
	default:
		return "empty"
	}
}

// DecodeStats reports what a lenient decode dropped.
type DecodeStats struct {
	Layout Layout

	// IgnoredColumns lists column-major header names not in the registry.
	IgnoredColumns []string

	// IgnoredRows counts row-major data rows whose scene is not registered.
	IgnoredRows int
}

// Decode builds a table from parsed records, the first being the header.
// Every registry scene gets a column; scenes absent from the records stay
// empty.
func Decode(records [][]string, reg *scene.Registry) (*Table, DecodeStats) {
	t := New(reg.Names())
	if len(records) == 0 {
		return t, DecodeStats{Layout: LayoutEmpty}
	}

	header := records[0]
	if len(header) > 0 && strings.EqualFold(strings.TrimSpace(header[0]), legacyHeader) {
		return t, decodeRowMajor(t, header, records[1:], reg)
	}
	return t, decodeColumnMajor(t, header, records[1:], reg)
}

func decodeColumnMajor(t *Table, header []string, rows [][]string, reg *scene.Registry) DecodeStats {
	stats := DecodeStats{Layout: LayoutColumnMajor}
	for j, cell := range header {
		name := scene.Normalize(cell)
		if !reg.Contains(name) {
			if name != "" {
				stats.IgnoredColumns = append(stats.IgnoredColumns, name)
			}
			continue
		}
		for _, row := range rows {
			if j < len(row) {
				t.Append(name, row[j])
			}
		}
	}
	return stats
}

func decodeRowMajor(t *Table, header []string, rows [][]string, reg *scene.Registry) DecodeStats {
	stats := DecodeStats{Layout: LayoutRowMajor}
	width := len(header)
	for _, row := range rows {
		padded := make([]string, width)
		copy(padded, row)

		name := scene.Normalize(padded[0])
		if !reg.Contains(name) {
			stats.IgnoredRows++
			continue
		}
		// A repeated scene row replaces the earlier one.
		t.Set(name, padded[1:])
	}
	return stats
}

// Encode projects t to column-major records: the scene header followed by
// Depth() padded rows.
func Encode(t *Table) [][]string {
	records := make([][]string, 0, t.Depth()+1)
	records = append(records, t.Scenes())
	return append(records, t.Rows()...)
}
