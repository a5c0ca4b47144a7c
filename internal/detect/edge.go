package detect

import (
	"image"
	"image/color"
	"math"

	"github.com/ivlev/receiptwarp/internal/geometry"
)

// EdgeDetector finds the receipt outline using Sobel edge detection followed
// by morphological dilation and connected-component search. The receipt is
// assumed to be the dominant high-contrast block in the frame.
type EdgeDetector struct {
	MinAreaRatio  float64 // minimum block area as a fraction of the image area
	EdgeThreshold float64 // gradient magnitude threshold
}

// NewEdgeDetector creates an edge-based detector with default settings
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{
		MinAreaRatio:  0.05, // receipts smaller than 5% of the frame are noise
		EdgeThreshold: 30.0, // moderate sensitivity
	}
}

// Detect locates the largest edge-connected block and returns its bounding
// quadrilateral as a normalized Result. Returns (nil, nil) when no block
// covers at least MinAreaRatio of the frame.
func (d *EdgeDetector) Detect(img image.Image) (*Result, error) {
	gray := toGrayscale(img)
	edges := sobel(gray, d.EdgeThreshold)
	dilated := dilate(edges, 5, 2)
	contours := findContours(dilated)

	bounds := img.Bounds()
	imgArea := bounds.Dx() * bounds.Dy()

	var best image.Rectangle
	bestArea := 0
	for _, rect := range contours {
		area := rect.Dx() * rect.Dy()
		if area > bestArea {
			bestArea = area
			best = rect
		}
	}

	coverage := float64(bestArea) / float64(imgArea)
	if coverage < d.MinAreaRatio {
		return nil, nil
	}

	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	nx0 := float64(best.Min.X-bounds.Min.X) / w
	ny0 := float64(best.Min.Y-bounds.Min.Y) / h
	nx1 := float64(best.Max.X-bounds.Min.X) / w
	ny1 := float64(best.Max.Y-bounds.Min.Y) / h

	// Normalized coordinates use a bottom-left origin, so the visual top edge
	// (small image y) gets the large normalized y value.
	return &Result{
		TopLeft:     geometry.Point{X: nx0, Y: 1 - ny1},
		TopRight:    geometry.Point{X: nx1, Y: 1 - ny1},
		BottomLeft:  geometry.Point{X: nx0, Y: 1 - ny0},
		BottomRight: geometry.Point{X: nx1, Y: 1 - ny0},
		Confidence:  confidenceFor(coverage),
	}, nil
}

// confidenceFor scales coverage into a confidence score: a receipt filling
// half the frame or more is a very reliable detection.
func confidenceFor(coverage float64) float64 {
	c := 0.5 + coverage
	if c > 0.95 {
		c = 0.95
	}
	return c
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// sobel applies the Sobel operator and thresholds the gradient magnitude
func sobel(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	gx := [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(gx[ky+1][kx+1])
					sumY += pixel * float64(gy[ky+1][kx+1])
				}
			}

			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return edges
}

// dilate performs morphological dilation to connect nearby edges
func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	copy(result.Pix, img.Pix)

	half := kernelSize / 2

	for iter := 0; iter < iterations; iter++ {
		temp := image.NewGray(bounds)

		for y := bounds.Min.Y + half; y < bounds.Max.Y-half; y++ {
			for x := bounds.Min.X + half; x < bounds.Max.X-half; x++ {
				maxVal := uint8(0)
				for ky := -half; ky <= half; ky++ {
					for kx := -half; kx <= half; kx++ {
						if val := result.GrayAt(x+kx, y+ky).Y; val > maxVal {
							maxVal = val
						}
					}
				}
				temp.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}

		result = temp
	}

	return result
}

// findContours finds bounding rectangles of connected white regions
func findContours(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([][]bool, bounds.Dy())
	for i := range visited {
		visited[i] = make([]bool, bounds.Dx())
	}

	var contours []image.Rectangle
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 && !visited[y-bounds.Min.Y][x-bounds.Min.X] {
				contours = append(contours, floodFill(img, visited, x, y))
			}
		}
	}

	return contours
}

// floodFill performs flood fill and returns the component's bounding rectangle
func floodFill(img *image.Gray, visited [][]bool, startX, startY int) image.Rectangle {
	bounds := img.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y
		if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		if visited[y-bounds.Min.Y][x-bounds.Min.X] || img.GrayAt(x, y).Y <= 128 {
			continue
		}
		visited[y-bounds.Min.Y][x-bounds.Min.X] = true

		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}

		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}
