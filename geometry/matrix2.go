package geometry

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when inverting a 2x2 matrix with a zero determinant
var ErrSingular = errors.New("matrix is singular")

// Matrix2 is a row major 2x2 matrix
type Matrix2 [2][2]float64

// Identity2 returns the 2x2 identity matrix
func Identity2() Matrix2 {
	return Matrix2{{1, 0}, {0, 1}}
}

// Diag2 returns a diagonal matrix with a and b on the diagonal
func Diag2(a, b float64) Matrix2 {
	return Matrix2{{a, 0}, {0, b}}
}

// Mul returns the matrix product m*n
func (m Matrix2) Mul(n Matrix2) Matrix2 {
	return Matrix2{
		{m[0][0]*n[0][0] + m[0][1]*n[1][0], m[0][0]*n[0][1] + m[0][1]*n[1][1]},
		{m[1][0]*n[0][0] + m[1][1]*n[1][0], m[1][0]*n[0][1] + m[1][1]*n[1][1]},
	}
}

// MulPoint returns the matrix vector product m*p
func (m Matrix2) MulPoint(p Point) Point {
	return Point{
		X: m[0][0]*p.X + m[0][1]*p.Y,
		Y: m[1][0]*p.X + m[1][1]*p.Y,
	}
}

// Add returns the element wise sum m+n
func (m Matrix2) Add(n Matrix2) Matrix2 {
	return Matrix2{
		{m[0][0] + n[0][0], m[0][1] + n[0][1]},
		{m[1][0] + n[1][0], m[1][1] + n[1][1]},
	}
}

// Scale returns m with every element multiplied by k
func (m Matrix2) Scale(k float64) Matrix2 {
	return Matrix2{
		{m[0][0] * k, m[0][1] * k},
		{m[1][0] * k, m[1][1] * k},
	}
}

// T returns the transpose of m
func (m Matrix2) T() Matrix2 {
	return Matrix2{
		{m[0][0], m[1][0]},
		{m[0][1], m[1][1]},
	}
}

// Det returns the determinant of m
func (m Matrix2) Det() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Trace returns the sum of the diagonal of m
func (m Matrix2) Trace() float64 {
	return m[0][0] + m[1][1]
}

// Inverse returns the closed form inverse of m.  ErrSingular is returned
// when the determinant is zero.
func (m Matrix2) Inverse() (Matrix2, error) {

	det := m.Det()

	if det == 0 {
		return Matrix2{}, ErrSingular
	}

	return Matrix2{
		{m[1][1] / det, -m[0][1] / det},
		{-m[1][0] / det, m[0][0] / det},
	}, nil
}

// Dense returns m as a gonum matrix
func (m Matrix2) Dense() *mat.Dense {
	return mat.NewDense(2, 2, []float64{m[0][0], m[0][1], m[1][0], m[1][1]})
}

// Matrix2FromDense copies the top left 2x2 block of a into a Matrix2
func Matrix2FromDense(a mat.Matrix) Matrix2 {
	return Matrix2{
		{a.At(0, 0), a.At(0, 1)},
		{a.At(1, 0), a.At(1, 1)},
	}
}
