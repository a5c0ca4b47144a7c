// Package editor holds the mutable corner state for a manual crop adjustment.
// It owns coordinates only; rendering of handles and the polygon outline is
// the caller's concern.
package editor

import (
	"errors"
	"fmt"

	"github.com/ivlev/receiptwarp/internal/detect"
	"github.com/ivlev/receiptwarp/internal/geometry"
)

// ErrLocked is returned for drags that arrive while a correction is pending.
var ErrLocked = errors.New("session is locked while a correction is pending")

// Session is the corner-editing state for one receipt image. Corners live in
// fitted-display coordinates; ImageQuad maps them back into the original
// image's pixel space. Writes go through DragCorner and Reset only.
type Session struct {
	quad   geometry.Quad
	seed   geometry.Quad
	fit    detect.FitTransform
	imageW float64
	imageH float64
	dirty  bool
	locked bool
}

// NewSession creates a session seeded with the given quadrilateral.
func NewSession(seed geometry.Quad, fit detect.FitTransform, imageW, imageH int) *Session {
	return &Session{
		quad:   seed,
		seed:   seed,
		fit:    fit,
		imageW: float64(imageW),
		imageH: float64(imageH),
	}
}

// Quad returns a copy of the current display-space quadrilateral.
func (s *Session) Quad() geometry.Quad { return s.quad }

// Fit returns the display fit the session was created with.
func (s *Session) Fit() detect.FitTransform { return s.fit }

// Dirty reports whether at least one corner moved since seeding.
func (s *Session) Dirty() bool { return s.dirty }

// DragCorner moves the corner at index to the target point, clamped to the
// fitted image bounds [0,W]x[0,H]. A corner can never be dragged outside the
// displayed image. Drags are ignored with ErrLocked while a warp is running.
// No ordering or convexity is enforced; a self-intersecting quadrilateral is
// accepted input here and judged at correction time.
func (s *Session) DragCorner(index int, to geometry.Point) error {
	if index < 0 || index > 3 {
		return fmt.Errorf("corner index %d out of range [0,3]", index)
	}
	if s.locked {
		return ErrLocked
	}

	s.quad[index] = geometry.Point{
		X: clamp(to.X, 0, s.fit.DisplayW),
		Y: clamp(to.Y, 0, s.fit.DisplayH),
	}
	s.dirty = true
	return nil
}

// Reset restores the session to the provided seed, discarding all edits.
func (s *Session) Reset(seed geometry.Quad) {
	s.quad = seed
	s.seed = seed
	s.dirty = false
}

// ImageQuad maps the current quadrilateral into the original image's pixel
// coordinate system, which is what the perspective corrector consumes.
func (s *Session) ImageQuad() geometry.Quad {
	var q geometry.Quad
	for i := range s.quad {
		q[i] = s.fit.ToImage(s.quad[i], s.imageW, s.imageH)
	}
	return q
}

// SetLocked toggles the drag lock. The review surface locks the session for
// the duration of an in-flight correction so corner state cannot change under
// the warp.
func (s *Session) SetLocked(locked bool) { s.locked = locked }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
