// Package overlay renders verification artifacts: quadrilateral outlines
// with corner handles, downscaled previews, and side-by-side review sheets.
package overlay

import (
	"image"
	"image/color"
	stddraw "image/draw"

	"golang.org/x/image/draw"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

// DrawQuad draws the quadrilateral outline onto dst with the given thickness.
func DrawQuad(dst *image.RGBA, q geometry.Quad, c color.RGBA, thickness int) {
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		drawLine(dst, q[i], q[j], c, thickness)
	}
}

// DrawHandles marks each corner with a filled square handle.
func DrawHandles(dst *image.RGBA, q geometry.Quad, c color.RGBA, radius int) {
	for _, p := range q {
		cx, cy := int(p.X+0.5), int(p.Y+0.5)
		fillRect(dst, image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1), c)
	}
}

// DrawBorder outlines a rectangle.
func DrawBorder(dst *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// Thumbnail scales src down so its longer side is at most maxSide, preserving
// aspect ratio. Images already small enough are copied as-is. CatmullRom
// keeps the receipt edges crisp for the detector.
func Thumbnail(src image.Image, maxSide int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= maxSide && h <= maxSide {
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		stddraw.Draw(out, out.Bounds(), src, b.Min, stddraw.Src)
		return out
	}

	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), src, b, draw.Src, nil)
	return out
}

func drawLine(dst *image.RGBA, a, b geometry.Point, c color.RGBA, thickness int) {
	// DDA with a square brush; outlines are short enough that this is cheap.
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(max(abs(dx), abs(dy))) + 1

	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(a.X + dx*t + 0.5)
		y := int(a.Y + dy*t + 0.5)
		fillRect(dst, image.Rect(x-half, y-half, x+half+1, y+half+1), c)
	}
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
