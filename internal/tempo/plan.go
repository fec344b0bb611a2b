package tempo

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/beatgrid/internal/beattable"
	"github.com/roach88/beatgrid/internal/scene"
)

var (
	// ErrPlanNotFound is returned when the plan file does not exist.
	ErrPlanNotFound = errors.New("tempo plan not found")

	// ErrEmptyPlan is returned when the plan has a header but no segments.
	ErrEmptyPlan = errors.New("tempo plan has no data rows")
)

// Plan column names.
const (
	ColumnScene = "scene"
	ColumnStart = "start_sec"
	ColumnEnd   = "end_sec"
	ColumnBPM   = "bpm"
)

// Segment is one scene's time window and tempo.
type Segment struct {
	Scene string
	Start float64
	End   float64
	BPM   float64
}

// SceneBeats is the generated column for one scene.
type SceneBeats struct {
	Scene string
	Beats []float64
}

// LoadPlan reads segments from a comma-separated file whose header names the
// scene, start_sec, end_sec and bpm columns in any order.
func LoadPlan(path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, path)
		}
		return nil, fmt.Errorf("open tempo plan: %w", err)
	}
	defer f.Close()
	return ParsePlan(f)
}

// ParsePlan reads segments from r.
func ParsePlan(r io.Reader) ([]Segment, error) {
	records, err := beattable.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("read tempo plan: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyPlan
	}

	cols := make(map[string]int, 4)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{ColumnScene, ColumnStart, ColumnEnd, ColumnBPM} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("tempo plan: missing column %q", name)
		}
	}

	seen := make(map[string]bool, len(records)-1)
	segments := make([]Segment, 0, len(records)-1)
	for i, row := range records[1:] {
		line := i + 2
		cell := func(name string) string {
			if j := cols[name]; j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}

		seg := Segment{Scene: scene.Normalize(cell(ColumnScene))}
		if seg.Scene == "" {
			return nil, fmt.Errorf("tempo plan line %d: empty scene", line)
		}
		if seen[seg.Scene] {
			return nil, fmt.Errorf("tempo plan line %d: duplicate scene %q", line, seg.Scene)
		}
		seen[seg.Scene] = true

		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{ColumnStart, &seg.Start},
			{ColumnEnd, &seg.End},
			{ColumnBPM, &seg.BPM},
		} {
			v, err := strconv.ParseFloat(cell(f.name), 64)
			if err != nil {
				return nil, fmt.Errorf("tempo plan line %d: %s %q is not a number", line, f.name, cell(f.name))
			}
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, fmt.Errorf("tempo plan line %d: %s %q is not finite", line, f.name, cell(f.name))
			}
			*f.dst = v
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Build generates every segment's beats in plan order.
func Build(plan []Segment, beatsPerBar int) []SceneBeats {
	out := make([]SceneBeats, len(plan))
	for i, seg := range plan {
		out[i] = SceneBeats{
			Scene: seg.Scene,
			Beats: Generate(seg.Start, seg.End, seg.BPM, beatsPerBar),
		}
	}
	return out
}

// SeedTable turns generated columns into a beat table whose scene order is
// the plan order.
func SeedTable(columns []SceneBeats) (*scene.Registry, *beattable.Table) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Scene
	}
	reg := scene.New(names)
	t := beattable.New(reg.Names())
	for _, c := range columns {
		t.Set(c.Scene, FormatAll(c.Beats))
	}
	return reg, t
}
