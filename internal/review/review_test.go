package review

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/receiptwarp/internal/detect"
	"github.com/ivlev/receiptwarp/internal/geometry"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func testDetection() *detect.Result {
	return &detect.Result{
		TopLeft:     geometry.Point{X: 0.05, Y: 0.05},
		TopRight:    geometry.Point{X: 0.95, Y: 0.05},
		BottomLeft:  geometry.Point{X: 0.05, Y: 0.95},
		BottomRight: geometry.Point{X: 0.95, Y: 0.95},
		Confidence:  0.9,
	}
}

func TestSkipPreview(t *testing.T) {
	original := testImage(100, 140)
	auto := testImage(90, 130)

	s := NewSession(original, auto, nil, 300, 420, nil)
	out, err := s.SkipPreview()
	if err != nil {
		t.Fatalf("SkipPreview failed: %v", err)
	}
	if !out.Accepted || out.Image != auto {
		t.Error("SkipPreview must accept the auto-processed image")
	}
	if s.State() != StateAccepted {
		t.Errorf("Expected accepted state, got %s", s.State())
	}
}

func TestRejectReturnsNoImage(t *testing.T) {
	s := NewSession(testImage(100, 140), testImage(100, 140), nil, 300, 420, nil)
	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}

	out, err := s.Reject()
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if out.Accepted || out.Image != nil {
		t.Errorf("Rejection must carry no image, got %+v", out)
	}
}

func TestAdjustUnavailableWithoutDetection(t *testing.T) {
	s := NewSession(testImage(100, 140), testImage(100, 140), nil, 300, 420, nil)
	s.StartPreview()

	if s.CanAdjustManually() {
		t.Error("CanAdjustManually must be false without a detection")
	}
	if err := s.BeginAdjust(); err == nil {
		t.Error("Expected BeginAdjust to fail without a detection")
	}
}

func TestToggleManualRequiresCorrection(t *testing.T) {
	s := NewSession(testImage(100, 140), testImage(100, 140), testDetection(), 300, 420, nil)
	s.StartPreview()

	if err := s.Toggle(ChoiceManual); err == nil {
		t.Error("Expected toggle to manual to fail before any correction")
	}
	if err := s.Toggle(ChoiceOriginal); err != nil {
		t.Errorf("Toggle to original failed: %v", err)
	}
}

// A degenerate quadrilateral keeps the user in the adjustment state so the
// corners can be fixed; no image escapes.
func TestApplyDegenerateStaysAdjusting(t *testing.T) {
	s := NewSession(testImage(200, 280), testImage(200, 280), testDetection(), 200, 280, nil)
	s.StartPreview()
	if err := s.BeginAdjust(); err != nil {
		t.Fatalf("BeginAdjust failed: %v", err)
	}

	ed := s.Editor()
	for i := 0; i < 4; i++ {
		if err := ed.DragCorner(i, geometry.Point{X: 50, Y: 50}); err != nil {
			t.Fatalf("DragCorner failed: %v", err)
		}
	}

	err := s.Apply(context.Background())
	if !errors.Is(err, geometry.ErrDegenerateQuad) {
		t.Errorf("Expected ErrDegenerateQuad, got %v", err)
	}
	if s.State() != StateAdjusting {
		t.Errorf("Expected session to remain adjusting, got %s", s.State())
	}

	// The editor must be usable again after the failed apply.
	if err := ed.DragCorner(0, geometry.Point{X: 10, Y: 10}); err != nil {
		t.Errorf("Editor still locked after failed apply: %v", err)
	}
}

func TestCancelAdjustKeepsPreviousChoice(t *testing.T) {
	s := NewSession(testImage(200, 280), testImage(200, 280), testDetection(), 200, 280, nil)
	s.StartPreview()
	s.BeginAdjust()

	if err := s.CancelAdjust(); err != nil {
		t.Fatalf("CancelAdjust failed: %v", err)
	}
	if s.State() != StatePreviewing {
		t.Errorf("Expected previewing after cancel, got %s", s.State())
	}

	out, err := s.Accept()
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if out.Image == nil || out.Image != s.auto {
		t.Error("Cancelled adjustment must leave the auto selection intact")
	}
}

// Full scenario: 1000x1400 original, detection at 5% margins, 300x420 display.
// Corner 0 dragged off-screen clamps to (0,0); applying without further edits
// yields a corrected buffer of roughly 950x1330 pixels.
func TestManualAdjustEndToEnd(t *testing.T) {
	original := testImage(1000, 1400)

	s := NewSession(original, original, testDetection(), 300, 420, nil)
	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if !s.CanAdjustManually() {
		t.Fatal("Expected manual adjustment to be available")
	}
	if err := s.BeginAdjust(); err != nil {
		t.Fatalf("BeginAdjust failed: %v", err)
	}

	ed := s.Editor()
	if err := ed.DragCorner(0, geometry.Point{X: -10, Y: -10}); err != nil {
		t.Fatalf("DragCorner failed: %v", err)
	}
	if got := ed.Quad()[0]; got != (geometry.Point{X: 0, Y: 0}) {
		t.Fatalf("Expected clamp to (0,0), got %v", got)
	}

	if err := s.Apply(context.Background()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if s.State() != StatePreviewing {
		t.Fatalf("Expected previewing after apply, got %s", s.State())
	}

	out, err := s.Accept()
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !out.Accepted || out.Image == nil {
		t.Fatal("Expected an accepted image")
	}

	b := out.Image.Bounds()
	if math.Abs(float64(b.Dx())-950) > 950*0.01 {
		t.Errorf("Expected width within 1%% of 950, got %d", b.Dx())
	}
	if math.Abs(float64(b.Dy())-1330) > 1330*0.01 {
		t.Errorf("Expected height within 1%% of 1330, got %d", b.Dy())
	}
	t.Logf("Corrected image: %dx%d", b.Dx(), b.Dy())
}
