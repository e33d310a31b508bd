package transform

import (
	"errors"
	"fmt"

	"github.com/swdee/go-landmark/geometry"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooFewPoints is returned when a fit has fewer correspondences than it
	// needs to determine the transform
	ErrTooFewPoints = errors.New("too few point correspondences")
	// ErrPointMismatch is returned when the from and to point sets differ
	// in length
	ErrPointMismatch = errors.New("point sets differ in length")
)

// Affine is a 2D affine transform mapping p to M*p + B
type Affine struct {
	M geometry.Matrix2
	B geometry.Point
}

// Identity returns the identity transform
func Identity() Affine {
	return Affine{M: geometry.Identity2()}
}

// NewAffine returns the transform p -> m*p + b
func NewAffine(m geometry.Matrix2, b geometry.Point) Affine {
	return Affine{M: m, B: b}
}

// FromMatrix builds a transform from a combined matrix.  A 2x3 matrix is read
// as [M | b], a 3x2 matrix as its transpose.
func FromMatrix(a mat.Matrix) (Affine, error) {

	r, c := a.Dims()

	switch {
	case r == 2 && c == 3:
	case r == 3 && c == 2:
		a = a.T()
	default:
		return Identity(), fmt.Errorf("affine matrix must be 2x3 or 3x2, got %dx%d", r, c)
	}

	return Affine{
		M: geometry.Matrix2FromDense(a),
		B: geometry.Pt(a.At(0, 2), a.At(1, 2)),
	}, nil
}

// Apply maps p through the transform
func (t Affine) Apply(p geometry.Point) geometry.Point {
	return t.M.MulPoint(p).Add(t.B)
}

// ApplyAll maps every point of pts through the transform
func (t Affine) ApplyAll(pts []geometry.Point) []geometry.Point {

	out := make([]geometry.Point, len(pts))

	for i, p := range pts {
		out[i] = t.Apply(p)
	}

	return out
}

// Compose returns the transform t∘g, which first applies g then t
func (t Affine) Compose(g Affine) Affine {
	return Affine{
		M: t.M.Mul(g.M),
		B: t.M.MulPoint(g.B).Add(t.B),
	}
}

// Inverse returns the inverse transform.  geometry.ErrSingular is returned
// when the linear part is not invertible.
func (t Affine) Inverse() (Affine, error) {

	inv, err := t.M.Inverse()

	if err != nil {
		return Identity(), fmt.Errorf("affine transform is not invertible: %w", err)
	}

	return Affine{M: inv, B: inv.MulPoint(t.B).Mul(-1)}, nil
}

// Matrix returns the transform in 2x3 [M | b] form
func (t Affine) Matrix() *mat.Dense {
	return mat.NewDense(2, 3, []float64{
		t.M[0][0], t.M[0][1], t.B.X,
		t.M[1][0], t.M[1][1], t.B.Y,
	})
}

// FindAffineTransform returns the least squares affine transform mapping
// from[i] to to[i].  The fit is exact for three non collinear points.  At
// least three correspondences are required, otherwise the identity transform
// is returned with ErrTooFewPoints.
func FindAffineTransform(from, to []geometry.Point) (Affine, error) {

	if len(from) != len(to) {
		return Identity(), ErrPointMismatch
	}

	n := len(from)

	if n < 3 {
		return Identity(), ErrTooFewPoints
	}

	// homogeneous source points as columns of P, targets as columns of Q
	p := mat.NewDense(3, n, nil)
	q := mat.NewDense(2, n, nil)

	for i := 0; i < n; i++ {
		p.Set(0, i, from[i].X)
		p.Set(1, i, from[i].Y)
		p.Set(2, i, 1)

		q.Set(0, i, to[i].X)
		q.Set(1, i, to[i].Y)
	}

	pinv, err := geometry.Pinv(p)

	if err != nil {
		return Identity(), fmt.Errorf("affine fit failed: %w", err)
	}

	var m mat.Dense
	m.Mul(q, pinv)

	return FromMatrix(&m)
}
