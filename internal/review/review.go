// Package review models the accept/reject surface for a scanned receipt:
// the user compares the original shot with the auto-processed candidate,
// optionally re-adjusts the detected corners by hand, and either accepts one
// image or rejects the capture entirely.
package review

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ivlev/receiptwarp/internal/detect"
	"github.com/ivlev/receiptwarp/internal/editor"
	"github.com/ivlev/receiptwarp/internal/geometry"
	"github.com/ivlev/receiptwarp/internal/warp"
)

// CorrectFunc performs the perspective correction for Apply. It exists so
// tests can substitute the warp.
type CorrectFunc func(ctx context.Context, src image.Image, corners geometry.Quad) (*image.RGBA, error)

// State is the review surface's lifecycle position.
type State int

const (
	StateInitial State = iota
	StatePreviewing
	StateAdjusting
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StatePreviewing:
		return "previewing"
	case StateAdjusting:
		return "adjusting"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Choice selects which candidate is displayed while previewing.
type Choice int

const (
	ChoiceOriginal Choice = iota
	ChoiceAuto
	ChoiceManual
)

// Outcome is the single terminal result of a session. Geometry failures never
// reach the caller: the boundary carries either an accepted image or an
// explicit rejection, nothing else.
type Outcome struct {
	Accepted bool
	Image    image.Image // nil when rejected
}

// Session drives the preview/decision flow for one receipt.
type Session struct {
	state     State
	original  image.Image
	auto      image.Image
	detection *detect.Result
	manual    image.Image
	choice    Choice

	displayW float64
	displayH float64
	editor   *editor.Session
	warping  bool

	correct CorrectFunc
}

// NewSession creates a review session over the original image and the
// auto-processed candidate. det may be nil; manual adjustment is then
// unavailable. displayW/displayH describe the preview container the corner
// editor will be fitted into. A nil correct defaults to warp.Correct.
func NewSession(original, auto image.Image, det *detect.Result, displayW, displayH float64, correct CorrectFunc) *Session {
	if correct == nil {
		correct = warp.Correct
	}
	return &Session{
		state:     StateInitial,
		original:  original,
		auto:      auto,
		detection: det,
		choice:    ChoiceAuto,
		displayW:  displayW,
		displayH:  displayH,
		correct:   correct,
	}
}

// State returns the current lifecycle position.
func (s *Session) State() State { return s.state }

// CanAdjustManually reports whether the auto-processed result carries a
// detected quadrilateral to seed the corner editor from.
func (s *Session) CanAdjustManually() bool { return s.detection != nil }

// StartPreview moves from Initial to Previewing.
func (s *Session) StartPreview() error {
	if s.state != StateInitial {
		return fmt.Errorf("cannot start preview from state %s", s.state)
	}
	s.state = StatePreviewing
	return nil
}

// Toggle switches the displayed candidate while previewing. ChoiceManual is
// only valid once a manual correction exists.
func (s *Session) Toggle(c Choice) error {
	if s.state != StatePreviewing {
		return fmt.Errorf("cannot toggle preview from state %s", s.state)
	}
	if c == ChoiceManual && s.manual == nil {
		return errors.New("no manually adjusted image yet")
	}
	s.choice = c
	return nil
}

// BeginAdjust branches into manual corner adjustment, seeding the editor
// from the detection.
func (s *Session) BeginAdjust() error {
	if s.state != StatePreviewing {
		return fmt.Errorf("cannot adjust from state %s", s.state)
	}
	if !s.CanAdjustManually() {
		return errors.New("no detection available to adjust")
	}

	b := s.original.Bounds()
	aspect := float64(b.Dx()) / float64(b.Dy())
	seed, ft := detect.Seed(s.detection, s.displayW, s.displayH, aspect)
	s.editor = editor.NewSession(seed, ft, b.Dx(), b.Dy())
	s.state = StateAdjusting
	return nil
}

// Editor exposes the corner editor while adjusting.
func (s *Session) Editor() *editor.Session { return s.editor }

// Apply runs the perspective correction over the current corners. On success
// the session returns to Previewing showing the manual result. A degenerate
// quadrilateral keeps the session in Adjusting so the user can fix the
// corners and try again; the error is informational for the prompt only.
func (s *Session) Apply(ctx context.Context) error {
	if s.state != StateAdjusting {
		return fmt.Errorf("cannot apply from state %s", s.state)
	}
	if s.warping {
		return errors.New("a correction is already pending")
	}

	s.warping = true
	s.editor.SetLocked(true)
	defer func() {
		s.warping = false
		s.editor.SetLocked(false)
	}()

	img, err := s.correct(ctx, s.original, s.editor.ImageQuad())
	if err != nil {
		// Recovered locally: stay in Adjusting, surface the prompt upstream.
		return err
	}

	s.manual = img
	s.choice = ChoiceManual
	s.state = StatePreviewing
	return nil
}

// CancelAdjust discards the adjustment and returns to Previewing unchanged.
func (s *Session) CancelAdjust() error {
	if s.state != StateAdjusting {
		return fmt.Errorf("cannot cancel adjustment from state %s", s.state)
	}
	s.editor = nil
	s.state = StatePreviewing
	return nil
}

// Accept finalizes the session with whichever image is currently displayed;
// a manual correction always wins over the original/auto selection.
func (s *Session) Accept() (Outcome, error) {
	if s.state != StatePreviewing {
		return Outcome{}, fmt.Errorf("cannot accept from state %s", s.state)
	}
	s.state = StateAccepted
	return Outcome{Accepted: true, Image: s.displayed()}, nil
}

// Reject finalizes the session with no image.
func (s *Session) Reject() (Outcome, error) {
	if s.state != StatePreviewing && s.state != StateInitial {
		return Outcome{}, fmt.Errorf("cannot reject from state %s", s.state)
	}
	s.state = StateRejected
	return Outcome{Accepted: false}, nil
}

// SkipPreview accepts the auto-processed image directly from Initial,
// bypassing review.
func (s *Session) SkipPreview() (Outcome, error) {
	if s.state != StateInitial {
		return Outcome{}, fmt.Errorf("cannot skip preview from state %s", s.state)
	}
	s.state = StateAccepted
	return Outcome{Accepted: true, Image: s.auto}, nil
}

func (s *Session) displayed() image.Image {
	if s.manual != nil {
		return s.manual
	}
	if s.choice == ChoiceOriginal {
		return s.original
	}
	return s.auto
}
