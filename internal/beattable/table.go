package beattable

import "strings"

// Table maps each registered scene to its beat values in stored order.
// Values are never blank; columns may differ in length.
type Table struct {
	scenes  []string
	columns map[string][]string
}

// New returns an empty table with one column per scene, in order.
func New(scenes []string) *Table {
	t := &Table{
		scenes:  make([]string, len(scenes)),
		columns: make(map[string][]string, len(scenes)),
	}
	copy(t.scenes, scenes)
	for _, s := range scenes {
		t.columns[s] = []string{}
	}
	return t
}

// Scenes returns the column order.
func (t *Table) Scenes() []string {
	out := make([]string, len(t.scenes))
	copy(out, t.scenes)
	return out
}

// Has reports whether scene is a column of the table.
func (t *Table) Has(scene string) bool {
	_, ok := t.columns[scene]
	return ok
}

// Column returns a copy of the values stored for scene.
func (t *Table) Column(scene string) []string {
	col, ok := t.columns[scene]
	if !ok {
		return nil
	}
	out := make([]string, len(col))
	copy(out, col)
	return out
}

// Len returns the number of values stored for scene.
func (t *Table) Len(scene string) int {
	return len(t.columns[scene])
}

// Append adds value at the end of scene's column and returns its index.
// It returns -1 when scene is not a column or value is blank.
func (t *Table) Append(scene, value string) int {
	col, ok := t.columns[scene]
	if !ok {
		return -1
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return -1
	}
	t.columns[scene] = append(col, value)
	return len(col)
}

// Set replaces scene's column. Blank values are skipped.
// It reports false when scene is not a column.
func (t *Table) Set(scene string, values []string) bool {
	if _, ok := t.columns[scene]; !ok {
		return false
	}
	col := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			col = append(col, v)
		}
	}
	t.columns[scene] = col
	return true
}

// Clear empties scene's column.
func (t *Table) Clear(scene string) bool {
	return t.Set(scene, nil)
}

// Depth is the length of the longest column.
func (t *Table) Depth() int {
	n := 0
	for _, col := range t.columns {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// Rows projects the table to Depth() rows in scene order, padding short
// columns with empty strings.
func (t *Table) Rows() [][]string {
	depth := t.Depth()
	rows := make([][]string, depth)
	for i := range rows {
		row := make([]string, len(t.scenes))
		for j, s := range t.scenes {
			if col := t.columns[s]; i < len(col) {
				row[j] = col[i]
			}
		}
		rows[i] = row
	}
	return rows
}

// Columns returns a copy of every column keyed by scene.
func (t *Table) Columns() map[string][]string {
	out := make(map[string][]string, len(t.columns))
	for s := range t.columns {
		out[s] = t.Column(s)
	}
	return out
}
