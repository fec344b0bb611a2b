// Package tempo turns per-scene tempo settings into beat timestamps.
package tempo

import (
	"math"
	"strconv"
)

// Supported beats-per-bar values. Eight doubles the density of four.
const (
	QuarterBeats = 4
	EighthBeats  = 8
)

// ValidBeatsPerBar reports whether n is a supported beats-per-bar value.
func ValidBeatsPerBar(n int) bool {
	return n == QuarterBeats || n == EighthBeats
}

// Interval is the spacing between beats in seconds. Any value other than
// EighthBeats is treated as QuarterBeats.
func Interval(bpm float64, beatsPerBar int) float64 {
	if beatsPerBar == EighthBeats {
		return 30 / bpm
	}
	return 60 / bpm
}

// Generate returns the beats in the half-open window [start, end), each
// rounded to milliseconds. Non-finite inputs, a non-positive bpm and a start
// too large to advance by one interval yield no beats.
func Generate(start, end, bpm float64, beatsPerBar int) []float64 {
	if bpm <= 0 || !finite(bpm) || !finite(start) || !finite(end) {
		return []float64{}
	}
	interval := Interval(bpm, beatsPerBar)
	if interval <= 0 || !finite(interval) || start+interval == start {
		return []float64{}
	}
	out := []float64{}
	for k := 0; ; k++ {
		t := start + float64(k)*interval
		if t >= end {
			break
		}
		out = append(out, Round(t))
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round rounds seconds to three decimal places.
func Round(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}

// Format renders seconds with exactly three decimal places.
func Format(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// FormatAll formats every value with Format.
func FormatAll(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Format(v)
	}
	return out
}
