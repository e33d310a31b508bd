package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pinv returns the Moore-Penrose pseudo-inverse of the m x n matrix a as an
// n x m matrix computed from its singular value decomposition.  Singular
// values below max(m,n) * max(W) * epsilon are treated as zero.
func Pinv(a mat.Matrix) (*mat.Dense, error) {

	svd, ok := Factorize(a)

	if !ok {
		return nil, ErrNoConvergence
	}

	m, n := a.Dims()

	var maxW float64

	for _, w := range svd.W {
		maxW = math.Max(maxW, w)
	}

	tol := float64(max(m, n)) * maxW * epsilon

	// scale the columns of V by the reciprocal singular values
	vr, vc := svd.V.Dims()
	vw := mat.NewDense(vr, vc, nil)

	vw.Apply(func(i, j int, v float64) float64 {
		if svd.W[j] <= tol {
			return 0
		}
		return v / svd.W[j]
	}, svd.V)

	out := mat.NewDense(n, m, nil)
	out.Mul(vw, svd.U.T())

	return out, nil
}

// epsilon is the float64 machine epsilon
const epsilon = 2.220446049250313e-16
