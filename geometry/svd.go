package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxSVDIterations is the number of QR sweeps allowed for each singular value
// before the decomposition is reported as not converged
const MaxSVDIterations = 300

// ErrNoConvergence is returned when the SVD iteration cap is reached
var ErrNoConvergence = errors.New("svd did not converge")

// SVD holds the thin singular value decomposition A = U * diag(W) * trans(V)
// of an m x n matrix A.  U is m x k, W has k entries and V is n x k where
// k = min(m, n).  The singular values are non-negative but not sorted.
type SVD struct {
	U *mat.Dense
	W []float64
	V *mat.Dense
}

// Factorize computes the singular value decomposition of a using
// Householder bidiagonalization followed by implicit shifted QR
// diagonalization (Golub-Reinsch).  ok is false when any singular value
// failed to converge within MaxSVDIterations sweeps, in which case the
// returned decomposition must not be used.
func Factorize(a mat.Matrix) (svd SVD, ok bool) {

	m, n := a.Dims()

	if m == 0 || n == 0 {
		return SVD{}, false
	}

	// the bidiagonalization works on tall matrices, so decompose the
	// transpose of wide ones and swap the factors back
	if m < n {
		t, ok := Factorize(a.T())

		if !ok {
			return SVD{}, false
		}

		return SVD{U: t.V, W: t.W, V: t.U}, true
	}

	u := make([][]float64, m)

	for i := range u {
		u[i] = make([]float64, n)

		for j := range u[i] {
			u[i][j] = a.At(i, j)
		}
	}

	w := make([]float64, n)
	v := make([][]float64, n)

	for i := range v {
		v[i] = make([]float64, n)
	}

	if !svdcmp(u, w, v, m, n) {
		return SVD{}, false
	}

	ud := mat.NewDense(m, n, nil)

	for i := 0; i < m; i++ {
		ud.SetRow(i, u[i])
	}

	vd := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		vd.SetRow(i, v[i])
	}

	return SVD{U: ud, W: w, V: vd}, true
}

// Values returns a copy of the singular values
func (s SVD) Values() []float64 {
	out := make([]float64, len(s.W))
	copy(out, s.W)
	return out
}

// Reconstruct returns U * diag(W) * trans(V)
func (s SVD) Reconstruct() *mat.Dense {

	r, c := s.U.Dims()
	uw := mat.NewDense(r, c, nil)

	uw.Apply(func(i, j int, v float64) float64 {
		return v * s.W[j]
	}, s.U)

	var out mat.Dense
	out.Mul(uw, s.V.T())

	return &out
}

// svdcmp decomposes the m x n (m >= n) matrix held in a in place.  On return
// a holds U, w the singular values and v the (not transposed) matrix V.
func svdcmp(a [][]float64, w []float64, v [][]float64, m, n int) bool {

	var (
		f, g, h, s   float64
		c, x, y, z   float64
		scale, anorm float64
		l, nm        int
		split        bool
	)

	rv1 := make([]float64, n)
	maxIter := MaxSVDIterations

	// Householder reduction to bidiagonal form
	for i := 0; i < n; i++ {
		l = i + 1
		rv1[i] = scale * g
		g, s, scale = 0, 0, 0

		if i < m {
			for k := i; k < m; k++ {
				scale += math.Abs(a[k][i])
			}

			if scale != 0 {
				for k := i; k < m; k++ {
					a[k][i] /= scale
					s += a[k][i] * a[k][i]
				}

				f = a[i][i]
				g = -withSign(math.Sqrt(s), f)
				h = f*g - s
				a[i][i] = f - g

				for j := l; j < n; j++ {
					s = 0
					for k := i; k < m; k++ {
						s += a[k][i] * a[k][j]
					}
					f = s / h
					for k := i; k < m; k++ {
						a[k][j] += f * a[k][i]
					}
				}

				for k := i; k < m; k++ {
					a[k][i] *= scale
				}
			}
		}

		w[i] = scale * g
		g, s, scale = 0, 0, 0

		if i < m && i != n-1 {
			for k := l; k < n; k++ {
				scale += math.Abs(a[i][k])
			}

			if scale != 0 {
				for k := l; k < n; k++ {
					a[i][k] /= scale
					s += a[i][k] * a[i][k]
				}

				f = a[i][l]
				g = -withSign(math.Sqrt(s), f)
				h = f*g - s
				a[i][l] = f - g

				for k := l; k < n; k++ {
					rv1[k] = a[i][k] / h
				}

				for j := l; j < m; j++ {
					s = 0
					for k := l; k < n; k++ {
						s += a[j][k] * a[i][k]
					}
					for k := l; k < n; k++ {
						a[j][k] += s * rv1[k]
					}
				}

				for k := l; k < n; k++ {
					a[i][k] *= scale
				}
			}
		}

		anorm = math.Max(anorm, math.Abs(w[i])+math.Abs(rv1[i]))
	}

	// accumulation of right hand transformations
	for i := n - 1; i >= 0; i-- {
		if i < n-1 {
			if g != 0 {
				// double division avoids possible underflow
				for j := l; j < n; j++ {
					v[j][i] = (a[i][j] / a[i][l]) / g
				}

				for j := l; j < n; j++ {
					s = 0
					for k := l; k < n; k++ {
						s += a[i][k] * v[k][j]
					}
					for k := l; k < n; k++ {
						v[k][j] += s * v[k][i]
					}
				}
			}

			for j := l; j < n; j++ {
				v[i][j] = 0
				v[j][i] = 0
			}
		}

		v[i][i] = 1
		g = rv1[i]
		l = i
	}

	// accumulation of left hand transformations
	for i := min(m, n) - 1; i >= 0; i-- {
		l = i + 1
		g = w[i]

		for j := l; j < n; j++ {
			a[i][j] = 0
		}

		if g != 0 {
			g = 1 / g

			for j := l; j < n; j++ {
				s = 0
				for k := l; k < m; k++ {
					s += a[k][i] * a[k][j]
				}
				f = (s / a[i][i]) * g
				for k := i; k < m; k++ {
					a[k][j] += f * a[k][i]
				}
			}

			for j := i; j < m; j++ {
				a[j][i] *= g
			}

		} else {
			for j := i; j < m; j++ {
				a[j][i] = 0
			}
		}

		a[i][i]++
	}

	// diagonalization of the bidiagonal form
	for k := n - 1; k >= 0; k-- {
		for its := 1; its <= maxIter; its++ {

			// test for splitting, rv1[0] is always zero so l == 0 ends the scan
			split = true

			for l = k; l >= 0; l-- {
				nm = l - 1

				if l == 0 || math.Abs(rv1[l])+anorm == anorm {
					split = false
					break
				}

				if math.Abs(w[nm])+anorm == anorm {
					break
				}
			}

			// cancellation of rv1[l] if l > 0
			if split {
				c = 0
				s = 1

				for i := l; i <= k; i++ {
					f = s * rv1[i]
					rv1[i] = c * rv1[i]

					if math.Abs(f)+anorm == anorm {
						break
					}

					g = w[i]
					h = Pythag(f, g)
					w[i] = h
					h = 1 / h
					c = g * h
					s = -f * h

					for j := 0; j < m; j++ {
						y = a[j][nm]
						z = a[j][i]
						a[j][nm] = y*c + z*s
						a[j][i] = z*c - y*s
					}
				}
			}

			z = w[k]

			// convergence, make the singular value non-negative
			if l == k {
				if z < 0 {
					w[k] = -z
					for j := 0; j < n; j++ {
						v[j][k] = -v[j][k]
					}
				}
				break
			}

			if its == maxIter {
				return false
			}

			// shift from bottom 2x2 minor
			x = w[l]
			nm = k - 1
			y = w[nm]
			g = rv1[nm]
			h = rv1[k]
			f = ((y-z)*(y+z) + (g-h)*(g+h)) / (2 * h * y)
			g = Pythag(f, 1)
			f = ((x-z)*(x+z) + h*((y/(f+withSign(g, f)))-h)) / x

			// next QR transformation
			c = 1
			s = 1

			for j := l; j <= nm; j++ {
				i := j + 1
				g = rv1[i]
				y = w[i]
				h = s * g
				g = c * g
				z = Pythag(f, h)
				rv1[j] = z
				c = f / z
				s = h / z
				f = x*c + g*s
				g = g*c - x*s
				h = y * s
				y *= c

				for jj := 0; jj < n; jj++ {
					x = v[jj][j]
					z = v[jj][i]
					v[jj][j] = x*c + z*s
					v[jj][i] = z*c - x*s
				}

				z = Pythag(f, h)
				w[j] = z

				// rotation can be arbitrary if z is zero
				if z != 0 {
					z = 1 / z
					c = f * z
					s = h * z
				}

				f = c*g + s*y
				x = c*y - s*g

				for jj := 0; jj < m; jj++ {
					y = a[jj][j]
					z = a[jj][i]
					a[jj][j] = y*c + z*s
					a[jj][i] = z*c - y*s
				}
			}

			rv1[l] = 0
			rv1[k] = f
			w[k] = x
		}
	}

	return true
}

// Pythag returns sqrt(a*a + b*b) without destructive underflow or overflow
func Pythag(a, b float64) float64 {

	absa := math.Abs(a)
	absb := math.Abs(b)

	if absa > absb {
		r := absb / absa
		return absa * math.Sqrt(1+r*r)
	}

	if absb == 0 {
		return 0
	}

	r := absa / absb

	return absb * math.Sqrt(1+r*r)
}

// withSign returns the magnitude of a with the sign of b
func withSign(a, b float64) float64 {
	if b >= 0 {
		return math.Abs(a)
	}
	return -math.Abs(a)
}
