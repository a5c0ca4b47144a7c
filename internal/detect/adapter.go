package detect

import "github.com/ivlev/receiptwarp/internal/geometry"

// DefaultInset is the per-side inset ratio used for the seed quadrilateral
// when no detection is available.
const DefaultInset = 0.10

// FitTransform describes the letterbox/pillarbox placement of an image inside
// a display container: the image is scaled to fit while preserving its aspect
// ratio and centered, leaving empty space on one axis.
//
// Quadrilaterals produced by Seed live in fitted-image coordinates (origin at
// the fitted image's top-left corner). OffsetX/OffsetY position that origin
// within the container for callers that render into container space.
type FitTransform struct {
	DisplayW float64 // fitted image width inside the container
	DisplayH float64 // fitted image height inside the container
	OffsetX  float64 // horizontal centering offset within the container
	OffsetY  float64 // vertical centering offset within the container
}

// Fit computes the letterbox placement of an image with the given aspect
// ratio (width/height) inside a container of the given size.
func Fit(containerW, containerH, imageAspect float64) FitTransform {
	w := containerW
	h := w / imageAspect
	if h > containerH {
		h = containerH
		w = h * imageAspect
	}
	return FitTransform{
		DisplayW: w,
		DisplayH: h,
		OffsetX:  (containerW - w) / 2,
		OffsetY:  (containerH - h) / 2,
	}
}

// ToImage maps a point from fitted-image coordinates back into the original
// image's pixel space.
func (t FitTransform) ToImage(p geometry.Point, imageW, imageH float64) geometry.Point {
	return geometry.Point{
		X: p.X * imageW / t.DisplayW,
		Y: p.Y * imageH / t.DisplayH,
	}
}

// Seed produces the initial display-space quadrilateral for a crop session
// along with the display fit. With a detection present, each normalized
// corner (x, y) maps to fitted-image space as (x*W, (1-y)*H): the detector's
// origin is at the bottom-left, display's at the top-left. Because the flip
// mirrors the vertical axis, it also swaps the top and bottom corner labels —
// the detector's bottomLeft lands at the display's top-left, and so on.
//
// Worked example: normalized bottomLeft (0.05, 0.95) on a 300x420 display
// becomes (15, 21), the display quadrilateral's topLeft.
//
// Without a detection the seed is a rectangle inset by DefaultInset of the
// fitted size on each side. Both paths are deterministic and never fail.
func Seed(det *Result, containerW, containerH, imageAspect float64) (geometry.Quad, FitTransform) {
	return SeedInset(det, containerW, containerH, imageAspect, DefaultInset)
}

// SeedInset is Seed with a configurable default-rectangle inset ratio.
func SeedInset(det *Result, containerW, containerH, imageAspect, inset float64) (geometry.Quad, FitTransform) {
	ft := Fit(containerW, containerH, imageAspect)
	w, h := ft.DisplayW, ft.DisplayH

	if det == nil {
		dx, dy := w*inset, h*inset
		return geometry.Quad{
			{X: dx, Y: dy},
			{X: w - dx, Y: dy},
			{X: w - dx, Y: h - dy},
			{X: dx, Y: h - dy},
		}, ft
	}

	flip := func(p geometry.Point) geometry.Point {
		return geometry.Point{X: p.X * w, Y: (1 - p.Y) * h}
	}
	return geometry.Quad{
		flip(det.BottomLeft),
		flip(det.BottomRight),
		flip(det.TopRight),
		flip(det.TopLeft),
	}, ft
}
