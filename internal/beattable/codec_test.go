package beattable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beatgrid/internal/scene"
)

func reg(names ...string) *scene.Registry {
	return scene.New(names)
}

func TestDecode_NoRecords(t *testing.T) {
	tb, stats := Decode(nil, reg("1-1", "1-2"))
	assert.Equal(t, LayoutEmpty, stats.Layout)
	assert.Equal(t, map[string][]string{"1-1": {}, "1-2": {}}, tb.Columns())
}

func TestDecode_ColumnMajor(t *testing.T) {
	records := [][]string{
		{"1-1", " 1-2 ", "9-9"},
		{"0.000", "0.250", "7.000"},
		{"0.500", ""},
		{" 1.000 "},
	}
	tb, stats := Decode(records, reg("1-1", "1-2", "2-1"))

	assert.Equal(t, LayoutColumnMajor, stats.Layout)
	assert.Equal(t, []string{"9-9"}, stats.IgnoredColumns)
	assert.Equal(t, map[string][]string{
		"1-1": {"0.000", "0.500", "1.000"},
		"1-2": {"0.250"},
		"2-1": {},
	}, tb.Columns())
	// Column order follows the registry, not the file.
	assert.Equal(t, []string{"1-1", "1-2", "2-1"}, tb.Scenes())
}

func TestDecode_ColumnMajorHeaderOnly(t *testing.T) {
	tb, stats := Decode([][]string{{"1-1", "1-2"}}, reg("1-1", "1-2"))
	assert.Equal(t, LayoutColumnMajor, stats.Layout)
	assert.Equal(t, 0, tb.Depth())
}

func TestDecode_RowMajorLegacy(t *testing.T) {
	records := [][]string{
		{"scene", "1-1", "1-2"},
		{"1-1", "0.500", "1.000"},
	}
	tb, stats := Decode(records, reg("1-1", "1-2"))

	assert.Equal(t, LayoutRowMajor, stats.Layout)
	assert.Equal(t, map[string][]string{
		"1-1": {"0.500", "1.000"},
		"1-2": {},
	}, tb.Columns())
}

func TestDecode_RowMajorCaseInsensitiveHeader(t *testing.T) {
	records := [][]string{
		{"  Scene ", "b1", "b2", "b3"},
		// short row is padded
		{"1-2", "3.000"},
		// unknown scene is ignored
		{"x-x", "1.000", "2.000"},
		// blank skipped, cell beyond the header ignored
		{"1-1", "", "2.000", "4.000", "99"},
	}
	tb, stats := Decode(records, reg("1-1", "1-2"))

	assert.Equal(t, LayoutRowMajor, stats.Layout)
	assert.Equal(t, 1, stats.IgnoredRows)
	assert.Equal(t, map[string][]string{
		"1-1": {"2.000", "4.000"},
		"1-2": {"3.000"},
	}, tb.Columns())
}

func TestDecode_RowMajorRepeatedSceneReplaces(t *testing.T) {
	records := [][]string{
		{"scene", "b1"},
		{"1-1", "1.000"},
		{"1-1", "2.000"},
	}
	tb, _ := Decode(records, reg("1-1"))
	assert.Equal(t, []string{"2.000"}, tb.Column("1-1"))
}

func TestEncode_ColumnMajorPadded(t *testing.T) {
	tb := New([]string{"1-1", "1-2"})
	tb.Set("1-1", []string{"0.000", "0.500"})

	assert.Equal(t, [][]string{
		{"1-1", "1-2"},
		{"0.000", ""},
		{"0.500", ""},
	}, Encode(tb))
}

func TestEncode_AllEmptyEmitsHeaderOnly(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}}, Encode(New([]string{"a", "b"})))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tb := New([]string{"1-1", "1-2", "2-1"})
	tb.Set("1-1", []string{"0.000", "0.500", "1.000"})
	tb.Set("2-1", []string{"4.250"})

	records := Encode(tb)
	back, stats := Decode(records, scene.New(records[0]))

	assert.Equal(t, LayoutColumnMajor, stats.Layout)
	assert.Equal(t, tb.Columns(), back.Columns())
}

func TestLegacyMigratesToColumnMajor(t *testing.T) {
	legacy := [][]string{
		{"scene", "b1", "b2"},
		{"1-2", "3.000", "4.000"},
		{"1-1", "1.000"},
	}
	r := reg("1-1", "1-2")
	tb, _ := Decode(legacy, r)

	records := Encode(tb)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1-1", "1-2"}, records[0])
	assert.Equal(t, []string{"1.000", "3.000"}, records[1])
	assert.Equal(t, []string{"", "4.000"}, records[2])
}

func TestLayoutString(t *testing.T) {
	assert.Equal(t, "empty", LayoutEmpty.String())
	assert.Equal(t, "column-major", LayoutColumnMajor.String())
	assert.Equal(t, "row-major", LayoutRowMajor.String())
}
