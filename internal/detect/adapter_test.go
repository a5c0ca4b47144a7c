package detect

import (
	"math"
	"testing"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

func almostEqual(a, b geometry.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestFitLetterbox(t *testing.T) {
	tests := []struct {
		name         string
		cw, ch       float64
		aspect       float64
		wantW, wantH float64
		wantOX       float64
		wantOY       float64
	}{
		{"exact fit", 300, 420, 300.0 / 420.0, 300, 420, 0, 0},
		{"pillarbox tall image", 300, 400, 0.5, 200, 400, 50, 0},
		{"letterbox wide image", 400, 400, 2.0, 400, 200, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := Fit(tt.cw, tt.ch, tt.aspect)
			if math.Abs(ft.DisplayW-tt.wantW) > 1e-9 || math.Abs(ft.DisplayH-tt.wantH) > 1e-9 {
				t.Errorf("Fitted size: expected %fx%f, got %fx%f", tt.wantW, tt.wantH, ft.DisplayW, ft.DisplayH)
			}
			if math.Abs(ft.OffsetX-tt.wantOX) > 1e-9 || math.Abs(ft.OffsetY-tt.wantOY) > 1e-9 {
				t.Errorf("Offset: expected (%f,%f), got (%f,%f)", tt.wantOX, tt.wantOY, ft.OffsetX, ft.OffsetY)
			}
		})
	}
}

// The default seed must be deterministic: identical inputs, identical quads.
func TestSeedDefaultDeterministic(t *testing.T) {
	q1, _ := Seed(nil, 300, 400, 0.5)
	q2, _ := Seed(nil, 300, 400, 0.5)

	for i := 0; i < 4; i++ {
		if !almostEqual(q1[i], q2[i]) {
			t.Errorf("Corner %d differs between identical calls: %v vs %v", i, q1[i], q2[i])
		}
	}
}

func TestSeedDefaultInset(t *testing.T) {
	// Container 300x400, aspect 0.5 -> fitted 200x400 centered at x=50.
	// 10% inset of the fitted size per side.
	q, ft := Seed(nil, 300, 400, 0.5)

	want := geometry.Quad{
		{X: 20, Y: 40},
		{X: 180, Y: 40},
		{X: 180, Y: 360},
		{X: 20, Y: 360},
	}
	for i := 0; i < 4; i++ {
		if !almostEqual(q[i], want[i]) {
			t.Errorf("Corner %d: expected %v, got %v", i, want[i], q[i])
		}
	}
	if ft.OffsetX != 50 || ft.OffsetY != 0 {
		t.Errorf("Expected offset (50,0), got (%f,%f)", ft.OffsetX, ft.OffsetY)
	}
}

// Pins down the normalized-to-display vertical flip: detector corners at
// (0.1,0.1),(0.9,0.1),(0.1,0.9),(0.9,0.9) on a 300x400 display must come out
// with the display's top at small y values.
func TestSeedDetectionFlip(t *testing.T) {
	det := &Result{
		TopLeft:     geometry.Point{X: 0.1, Y: 0.1},
		TopRight:    geometry.Point{X: 0.9, Y: 0.1},
		BottomLeft:  geometry.Point{X: 0.1, Y: 0.9},
		BottomRight: geometry.Point{X: 0.9, Y: 0.9},
		Confidence:  0.9,
	}

	// Aspect matches the container exactly, so fitted size is 300x400.
	q, _ := Seed(det, 300, 400, 0.75)

	want := geometry.Quad{
		{X: 30, Y: 40},   // topLeft
		{X: 270, Y: 40},  // topRight
		{X: 270, Y: 360}, // bottomRight
		{X: 30, Y: 360},  // bottomLeft
	}
	for i := 0; i < 4; i++ {
		if !almostEqual(q[i], want[i]) {
			t.Errorf("Corner %d: expected %v, got %v", i, want[i], q[i])
		}
	}

	if q[geometry.TopLeft].Y >= q[geometry.BottomLeft].Y {
		t.Errorf("Flip broken: topLeft y (%f) must be smaller than bottomLeft y (%f)",
			q[geometry.TopLeft].Y, q[geometry.BottomLeft].Y)
	}
}

func TestToImage(t *testing.T) {
	ft := Fit(300, 420, 1000.0/1400.0)

	// 300x420 display over a 1000x1400 image: scale factor 10/3 on both axes.
	p := ft.ToImage(geometry.Point{X: 15, Y: 21}, 1000, 1400)
	if math.Abs(p.X-50) > 1e-9 || math.Abs(p.Y-70) > 1e-9 {
		t.Errorf("Expected (50,70), got (%f,%f)", p.X, p.Y)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"edge", false},
		{"", false}, // default
		{"ml", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}
