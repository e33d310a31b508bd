package transform

import (
	"fmt"

	"github.com/swdee/go-landmark/geometry"
)

// FindSimilarityTransform returns the rotation, uniform scale and translation
// that best maps from[i] to to[i] in the least squares sense, using Umeyama's
// method.  The result never contains a reflection unless the point sets
// require one.
//
// A single correspondence carries no rotation or scale information so the
// identity transform is returned without error.  Empty or mismatched inputs
// and an SVD that fails to converge also yield the identity transform,
// together with an error describing why.
func FindSimilarityTransform(from, to []geometry.Point) (Affine, error) {

	if len(from) != len(to) {
		return Identity(), ErrPointMismatch
	}

	switch len(from) {
	case 0:
		return Identity(), ErrTooFewPoints
	case 1:
		return Identity(), nil
	}

	meanFrom := geometry.Mean(from)
	meanTo := geometry.Mean(to)

	var (
		sigmaFrom float64
		cov       geometry.Matrix2
	)

	for i := range from {
		df := from[i].Sub(meanFrom)
		dt := to[i].Sub(meanTo)

		sigmaFrom += df.LengthSquared()
		cov = cov.Add(dt.Outer(df))
	}

	n := float64(len(from))
	sigmaFrom /= n
	cov = cov.Scale(1 / n)

	svd, ok := geometry.Factorize(cov.Dense())

	if !ok {
		return Identity(), fmt.Errorf("similarity fit failed: %w", geometry.ErrNoConvergence)
	}

	u := geometry.Matrix2FromDense(svd.U)
	v := geometry.Matrix2FromDense(svd.V)
	d := geometry.Diag2(svd.W[0], svd.W[1])

	// flip the smaller singular direction to avoid returning a reflection
	s := geometry.Identity2()
	det := cov.Det()

	if det < 0 || (det == 0 && u.Det()*v.Det() < 0) {
		if svd.W[1] < svd.W[0] {
			s[1][1] = -1
		} else {
			s[0][0] = -1
		}
	}

	r := u.Mul(s).Mul(v.T())

	c := 1.0

	if sigmaFrom != 0 {
		c = d.Mul(s).Trace() / sigmaFrom
	}

	cr := r.Scale(c)
	t := meanTo.Sub(cr.MulPoint(meanFrom))

	return Affine{M: cr, B: t}, nil
}
