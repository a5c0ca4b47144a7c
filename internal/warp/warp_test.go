package warp

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Output dimensions follow the corner distances: width is the longer of the
// top/bottom sides, height the longer of the left/right sides.
func TestCorrectOutputDimensions(t *testing.T) {
	src := solidImage(400, 500, color.RGBA{200, 180, 160, 255})

	q := geometry.Quad{
		{X: 10, Y: 20},
		{X: 210, Y: 30},
		{X: 220, Y: 340},
		{X: 15, Y: 330},
	}

	out, err := Correct(context.Background(), src, q)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	wantW := int(math.Round(q.Width()))
	wantH := int(math.Round(q.Height()))
	if out.Bounds().Dx() != wantW || out.Bounds().Dy() != wantH {
		t.Errorf("Expected %dx%d, got %dx%d", wantW, wantH, out.Bounds().Dx(), out.Bounds().Dy())
	}
	if out.Bounds().Dx() <= 0 || out.Bounds().Dy() <= 0 {
		t.Error("Output dimensions must be positive")
	}

	gotRatio := float64(out.Bounds().Dx()) / float64(out.Bounds().Dy())
	wantRatio := float64(wantW) / float64(wantH)
	if math.Abs(gotRatio-wantRatio) > 1e-3 {
		t.Errorf("Aspect ratio drifted: expected %f, got %f", wantRatio, gotRatio)
	}
}

// An axis-aligned quadrilateral is a plain crop: pixel values must survive.
func TestCorrectAxisAlignedCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fill := color.RGBA{10, 10, 10, 255}
	inner := color.RGBA{250, 40, 40, 255}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x >= 20 && x < 80 && y >= 30 && y < 70 {
				src.SetRGBA(x, y, inner)
			} else {
				src.SetRGBA(x, y, fill)
			}
		}
	}

	q := geometry.Quad{
		{X: 20, Y: 30},
		{X: 79, Y: 30},
		{X: 79, Y: 69},
		{X: 20, Y: 69},
	}
	out, err := Correct(context.Background(), src, q)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	// Sample the output center; it lies deep inside the inner region.
	cx, cy := out.Bounds().Dx()/2, out.Bounds().Dy()/2
	got := out.RGBAAt(cx, cy)
	if got != inner {
		t.Errorf("Expected center pixel %v, got %v", inner, got)
	}
}

func TestCorrectDegenerate(t *testing.T) {
	src := solidImage(50, 50, color.RGBA{255, 255, 255, 255})

	tests := []struct {
		name string
		quad geometry.Quad
	}{
		{"all identical", geometry.Quad{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}},
		{"collinear", geometry.Quad{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}},
		{"zero area pair", geometry.Quad{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 40, Y: 40}, {X: 40, Y: 40}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Correct(context.Background(), src, tt.quad)
			if !errors.Is(err, geometry.ErrDegenerateQuad) {
				t.Errorf("Expected ErrDegenerateQuad, got %v", err)
			}
			if out != nil {
				t.Error("Expected nil buffer on degenerate input")
			}
		})
	}
}

func TestCorrectDoesNotMutateSource(t *testing.T) {
	src := solidImage(60, 60, color.RGBA{1, 2, 3, 255})
	snapshot := make([]uint8, len(src.Pix))
	copy(snapshot, src.Pix)

	q := geometry.Quad{{X: 5, Y: 5}, {X: 55, Y: 5}, {X: 55, Y: 55}, {X: 5, Y: 55}}
	if _, err := Correct(context.Background(), src, q); err != nil {
		t.Fatalf("Correct failed: %v", err)
	}

	for i := range snapshot {
		if src.Pix[i] != snapshot[i] {
			t.Fatalf("Source pixel data mutated at offset %d", i)
		}
	}
}

func TestCorrectCancellation(t *testing.T) {
	src := solidImage(400, 400, color.RGBA{90, 90, 90, 255})
	q := geometry.Quad{{X: 0, Y: 0}, {X: 399, Y: 0}, {X: 399, Y: 399}, {X: 0, Y: 399}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Correct(ctx, src, q); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
