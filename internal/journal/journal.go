// Package journal records crop decisions per receipt so a batch run can
// replay reviewed corners instead of re-detecting, and so the mobile app can
// pair corrected files with their capture sessions.
package journal

import (
	"fmt"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

// Journal is the persisted set of crop decisions for a processing run.
type Journal struct {
	Version string  `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// Entry stores one receipt's corners in original-image pixel space, flattened
// as [x0 y0 x1 y1 x2 y2 x3 y3] in [topLeft topRight bottomRight bottomLeft]
// order.
type Entry struct {
	Input      string    `yaml:"input"`
	Corners    []float64 `yaml:"corners"`
	Confidence float64   `yaml:"confidence"`
	Accepted   bool      `yaml:"accepted"`
}

// New creates an empty journal at the current format version.
func New() *Journal {
	return &Journal{Version: "1.0"}
}

// NewEntry flattens a quadrilateral into a journal entry.
func NewEntry(input string, q geometry.Quad, confidence float64, accepted bool) Entry {
	corners := make([]float64, 0, 8)
	for _, p := range q {
		corners = append(corners, p.X, p.Y)
	}
	return Entry{Input: input, Corners: corners, Confidence: confidence, Accepted: accepted}
}

// Quad restores the entry's corner quadrilateral.
func (e Entry) Quad() (geometry.Quad, error) {
	if len(e.Corners) != 8 {
		return geometry.Quad{}, fmt.Errorf("entry %q has %d corner values, expected 8", e.Input, len(e.Corners))
	}
	var q geometry.Quad
	for i := 0; i < 4; i++ {
		q[i] = geometry.Point{X: e.Corners[2*i], Y: e.Corners[2*i+1]}
	}
	return q, nil
}

// Find returns the entry for the given input name, or nil.
func (j *Journal) Find(input string) *Entry {
	for i := range j.Entries {
		if j.Entries[i].Input == input {
			return &j.Entries[i]
		}
	}
	return nil
}

// Add appends or replaces the entry for its input name.
func (j *Journal) Add(e Entry) {
	for i := range j.Entries {
		if j.Entries[i].Input == e.Input {
			j.Entries[i] = e
			return
		}
	}
	j.Entries = append(j.Entries, e)
}
