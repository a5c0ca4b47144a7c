package geometry

import "math"

// Matrix is a 3x3 projective transform stored row-major with m[8] fixed to 1.
type Matrix [9]float64

// Homography computes the transform H mapping src[i] -> dst[i] for the four
// corner correspondences. The 8 unknowns (h00..h21, h22=1) are found by
// solving the standard DLT system with Gaussian elimination and partial
// pivoting. A singular system yields ErrDegenerateQuad.
func Homography(src, dst Quad) (Matrix, error) {
	// Two rows per correspondence:
	// x' = (h00 X + h01 Y + h02) / (h20 X + h21 Y + 1)
	// y' = (h10 X + h11 Y + h12) / (h20 X + h21 Y + 1)
	var a [8][9]float64 // augmented: 8 coefficients + rhs
	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i
		a[r] = [9]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x, x}
		a[r+1] = [9]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y, y}
	}

	for col := 0; col < 8; col++ {
		// Partial pivoting: move the row with the largest |coefficient| up.
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Matrix{}, ErrDegenerateQuad
		}
		a[col], a[pivot] = a[pivot], a[col]

		div := a[col][col]
		for c := col; c < 9; c++ {
			a[col][c] /= div
		}
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	return Matrix{a[0][8], a[1][8], a[2][8], a[3][8], a[4][8], a[5][8], a[6][8], a[7][8], 1}, nil
}

// Apply maps (x, y) through the transform.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	denom := m[6]*x + m[7]*y + m[8]
	if denom == 0 {
		return -1e9, -1e9
	}
	return (m[0]*x + m[1]*y + m[2]) / denom, (m[3]*x + m[4]*y + m[5]) / denom
}
