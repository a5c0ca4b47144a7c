// Package warp deskews a photographed receipt: given the original image and
// four corner points in its pixel space, it maps the quadrilateral onto an
// upright rectangle through a perspective transform.
package warp

import (
	"context"
	"image"
	"image/draw"
	"math"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

// ctxCheckRows is how often (in output rows) the warp loop polls the context.
const ctxCheckRows = 64

// Correct resamples the quadrilateral region of src into a new upright
// rectangular buffer. Corners are expected in the original image's pixel
// coordinate system. The output size derives from the corner distances:
// width is the longer of the top/bottom sides, height the longer of the
// left/right sides.
//
// The source image is only read; the returned buffer is freshly owned by the
// caller (recycle it with PutBuffer once encoded). Degenerate corners fail
// with geometry.ErrDegenerateQuad before any pixel work. The context is
// polled between row blocks so a dismissed session can abandon a warp.
func Correct(ctx context.Context, src image.Image, corners geometry.Quad) (*image.RGBA, error) {
	if corners.IsDegenerate() {
		return nil, geometry.ErrDegenerateQuad
	}

	outW := int(math.Round(corners.Width()))
	outH := int(math.Round(corners.Height()))
	if outW < 1 || outH < 1 {
		return nil, geometry.ErrDegenerateQuad
	}

	// Map output rectangle corners onto the source quadrilateral; the warp
	// then walks every destination pixel and samples backwards through H.
	dstRect := geometry.Quad{
		{X: 0, Y: 0},
		{X: float64(outW - 1), Y: 0},
		{X: float64(outW - 1), Y: float64(outH - 1)},
		{X: 0, Y: float64(outH - 1)},
	}
	h, err := geometry.Homography(dstRect, corners)
	if err != nil {
		return nil, err
	}

	rgba := toRGBA(src)
	out := GetBuffer(image.Rect(0, 0, outW, outH))

	for y := 0; y < outH; y++ {
		if y%ctxCheckRows == 0 && ctx.Err() != nil {
			PutBuffer(out)
			return nil, ctx.Err()
		}
		for x := 0; x < outW; x++ {
			sx, sy := h.Apply(float64(x), float64(y))
			r, g, b, a := bilinear(rgba, sx, sy)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = a
		}
	}

	return out, nil
}

// toRGBA returns src as *image.RGBA with a zero-origin standard stride,
// converting only when necessary.
func toRGBA(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}
	return rgba
}

// bilinear samples src at a fractional position with bilinear interpolation.
// Coordinates outside the image clamp to the edge pixel.
func bilinear(src *image.RGBA, x, y float64) (uint8, uint8, uint8, uint8) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()

	if x < 0 {
		x = 0
	} else if x > float64(w-1) {
		x = float64(w - 1)
	}
	if y < 0 {
		y = 0
	} else if y > float64(h-1) {
		y = float64(h - 1)
	}

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	i00 := src.PixOffset(x0, y0)
	i10 := src.PixOffset(x1, y0)
	i01 := src.PixOffset(x0, y1)
	i11 := src.PixOffset(x1, y1)

	mix := func(c int) uint8 {
		top := float64(src.Pix[i00+c])*(1-fx) + float64(src.Pix[i10+c])*fx
		bot := float64(src.Pix[i01+c])*(1-fx) + float64(src.Pix[i11+c])*fx
		return uint8(top*(1-fy) + bot*fy + 0.5)
	}
	return mix(0), mix(1), mix(2), mix(3)
}
