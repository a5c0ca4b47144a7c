package detect

import (
	"image"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

// Result is a receipt outline detection in normalized detector coordinates:
// corners as fractions of the image size in [0,1]x[0,1], origin at the
// bottom-left (the vertical axis grows upward, unlike display space).
type Result struct {
	TopLeft     geometry.Point
	TopRight    geometry.Point
	BottomLeft  geometry.Point
	BottomRight geometry.Point
	Confidence  float64 // 0.0-1.0
}

// Detector is the interface for receipt outline detection strategies.
// A nil Result with a nil error means nothing was found; callers fall back
// to the default inset seed.
type Detector interface {
	Detect(img image.Image) (*Result, error)
}
