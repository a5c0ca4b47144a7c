package overlay

import (
	"image"
	"image/color"
	stddraw "image/draw"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

const (
	sheetGap    = 10
	qrSize      = 120
	qrMargin    = 8
	borderWidth = 2
)

// CompareSheet composes a review sheet: the original image with the crop
// quadrilateral and handles on the left, the corrected result framed on the
// right. A non-empty qrPayload is stamped into the bottom-right corner as a
// QR code so the mobile app can pair the sheet with its capture session.
func CompareSheet(original image.Image, quad geometry.Quad, corrected image.Image, qrPayload string) (*image.RGBA, error) {
	ob := original.Bounds()
	cb := corrected.Bounds()

	w := ob.Dx() + sheetGap + cb.Dx()
	h := ob.Dy()
	if cb.Dy() > h {
		h = cb.Dy()
	}

	sheet := image.NewRGBA(image.Rect(0, 0, w, h))
	stddraw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.RGBA{32, 32, 32, 255}), image.Point{}, stddraw.Src)

	stddraw.Draw(sheet, image.Rect(0, 0, ob.Dx(), ob.Dy()), original, ob.Min, stddraw.Src)

	xoff := ob.Dx() + sheetGap
	stddraw.Draw(sheet, image.Rect(xoff, 0, xoff+cb.Dx(), cb.Dy()), corrected, cb.Min, stddraw.Src)

	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}
	DrawQuad(sheet, quad, red, borderWidth)
	DrawHandles(sheet, quad, red, 4)
	DrawBorder(sheet, image.Rect(xoff, 0, xoff+cb.Dx(), cb.Dy()), green, borderWidth)

	if qrPayload != "" {
		qr, err := qrcode.New(qrPayload, qrcode.Medium)
		if err != nil {
			return nil, err
		}
		stamp := qr.Image(qrSize)
		sb := stamp.Bounds()
		target := image.Rect(w-sb.Dx()-qrMargin, h-sb.Dy()-qrMargin, w-qrMargin, h-qrMargin)
		stddraw.Draw(sheet, target, stamp, sb.Min, stddraw.Src)
	}

	return sheet, nil
}
