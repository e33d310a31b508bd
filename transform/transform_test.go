package transform

import (
	"errors"
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/swdee/go-landmark/geometry"
	"gonum.org/v1/gonum/mat"
)

// pointsEqual compares two points within epsilon
func pointsEqual(a, b geometry.Point, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon && math.Abs(a.Y-b.Y) <= epsilon
}

// transformsEqual compares the linear and translation parts of two transforms
func transformsEqual(a, b Affine, epsilon float64) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(a.M[i][j]-b.M[i][j]) > epsilon {
				return false
			}
		}
	}
	return pointsEqual(a.B, b.B, epsilon)
}

// similarity builds the transform with rotation theta, scale s and
// translation (tx, ty)
func similarity(theta, s, tx, ty float64) Affine {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return NewAffine(geometry.Matrix2{{s * cos, -s * sin}, {s * sin, s * cos}},
		geometry.Pt(tx, ty))
}

func randomPoints(rng *rand.Rand, n int) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		pts[i] = geometry.Pt(rng.Float64()*100-50, rng.Float64()*100-50)
	}
	return pts
}

func TestApplyAndCompose(t *testing.T) {

	f := NewAffine(geometry.Matrix2{{2, 0}, {0, 3}}, geometry.Pt(1, -1))
	g := NewAffine(geometry.Matrix2{{0, -1}, {1, 0}}, geometry.Pt(5, 5))

	p := geometry.Pt(1, 2)

	if got := f.Apply(p); got != geometry.Pt(3, 5) {
		t.Errorf("expected (3,5), got %v", got)
	}

	fg := f.Compose(g)

	if got, want := fg.Apply(p), f.Apply(g.Apply(p)); !pointsEqual(got, want, 1e-12) {
		t.Errorf("composition expected %v, got %v", want, got)
	}
}

func TestInverseComposition(t *testing.T) {

	rng := rand.New(rand.NewSource(3))

	tests := []Affine{
		Identity(),
		similarity(0.7, 1.5, 10, -4),
		NewAffine(geometry.Matrix2{{1, 0.5}, {0.25, 2}}, geometry.Pt(-3, 8)),
	}

	for i, f := range tests {

		inv, err := f.Inverse()

		if err != nil {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}

		for _, p := range randomPoints(rng, 10) {

			if got := f.Compose(inv).Apply(p); !pointsEqual(got, p, 1e-9) {
				t.Errorf("case %d: f∘inv(f) maps %v to %v", i, p, got)
			}

			if got := inv.Compose(f).Apply(p); !pointsEqual(got, p, 1e-9) {
				t.Errorf("case %d: inv(f)∘f maps %v to %v", i, p, got)
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {

	f := NewAffine(geometry.Matrix2{{1, 2}, {2, 4}}, geometry.Pt(1, 1))

	if _, err := f.Inverse(); !errors.Is(err, geometry.ErrSingular) {
		t.Errorf("expected ErrSingular, got %v", err)
	}
}

func TestFromMatrix(t *testing.T) {

	f := NewAffine(geometry.Matrix2{{1, 2}, {3, 4}}, geometry.Pt(5, 6))

	got, err := FromMatrix(f.Matrix())

	if err != nil || got != f {
		t.Errorf("2x3 round trip expected %v, got %v (%v)", f, got, err)
	}

	got, err = FromMatrix(f.Matrix().T())

	if err != nil || got != f {
		t.Errorf("3x2 round trip expected %v, got %v (%v)", f, got, err)
	}

	if _, err = FromMatrix(mat.NewDense(2, 2, nil)); err == nil {
		t.Error("expected error for 2x2 matrix")
	}
}

func TestFindAffineTransform(t *testing.T) {

	rng := rand.New(rand.NewSource(11))
	want := NewAffine(geometry.Matrix2{{1.2, -0.3}, {0.4, 0.9}}, geometry.Pt(7, -2))

	for _, n := range []int{3, 4, 68} {

		from := randomPoints(rng, n)
		to := want.ApplyAll(from)

		got, err := FindAffineTransform(from, to)

		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", n, err)
		}

		if !transformsEqual(got, want, 1e-9) {
			t.Errorf("n=%d: expected %v, got %v", n, want, got)
		}
	}
}

func TestFindAffineTransformTooFew(t *testing.T) {

	pts := []geometry.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}

	got, err := FindAffineTransform(pts, pts)

	if err != ErrTooFewPoints {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}

	if got != Identity() {
		t.Errorf("expected identity fallback, got %v", got)
	}

	if _, err = FindAffineTransform(pts, pts[:1]); err != ErrPointMismatch {
		t.Errorf("expected ErrPointMismatch, got %v", err)
	}
}

func TestFindSimilarityTransform(t *testing.T) {

	rng := rand.New(rand.NewSource(5))

	tests := []struct {
		name string
		want Affine
	}{
		{"identity", Identity()},
		{"rotation", similarity(0.5, 1, 0, 0)},
		{"scale and shift", similarity(0, 2.5, 30, -12)},
		{"half turn", similarity(math.Pi, 0.8, -5, 5)},
		{"general", similarity(-2.1, 0.3, 100, 42)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			from := randomPoints(rng, 68)
			to := tc.want.ApplyAll(from)

			got, err := FindSimilarityTransform(from, to)

			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}

			if !transformsEqual(got, tc.want, 1e-9) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}

			if got.M.Det() <= 0 {
				t.Errorf("expected no reflection, determinant %v", got.M.Det())
			}
		})
	}
}

func TestFindSimilarityTransformReflectionInput(t *testing.T) {

	// mirrored targets can only be approximated by a rotation, the fit
	// must still not contain a reflection
	from := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 2}, {X: 3, Y: 1}}
	to := make([]geometry.Point, len(from))

	for i, p := range from {
		to[i] = geometry.Pt(-p.X, p.Y)
	}

	got, err := FindSimilarityTransform(from, to)

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if got.M.Det() < 0 {
		t.Errorf("fit contains a reflection: %v", got.M)
	}
}

func TestFindSimilarityTransformSinglePoint(t *testing.T) {

	got, err := FindSimilarityTransform(
		[]geometry.Point{{X: 3, Y: 4}},
		[]geometry.Point{{X: -100, Y: 250}},
	)

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if got != Identity() {
		t.Errorf("expected identity for single point, got %v", got)
	}
}

func TestFindSimilarityTransformDegenerate(t *testing.T) {

	if got, err := FindSimilarityTransform(nil, nil); err != ErrTooFewPoints || got != Identity() {
		t.Errorf("expected identity and ErrTooFewPoints, got %v %v", got, err)
	}

	// all source points coincide, the scale falls back to one
	from := []geometry.Point{{X: 1, Y: 1}, {X: 1, Y: 1}}
	to := []geometry.Point{{X: 2, Y: 3}, {X: 4, Y: 5}}

	got, err := FindSimilarityTransform(from, to)

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if want := geometry.Pt(3, 4); !pointsEqual(got.Apply(from[0]), want, 1e-9) {
		t.Errorf("expected coincident points to map to %v, got %v", want, got.Apply(from[0]))
	}
}

func TestNormalizingRoundTrip(t *testing.T) {

	rects := []image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(20, 35, 120, 190),
		image.Rect(-15, -5, 40, 30),
	}

	rng := rand.New(rand.NewSource(9))

	for _, r := range rects {

		norm, err := NormalizingTransform(r)

		if err != nil {
			t.Fatalf("%v: unexpected error %v", r, err)
		}

		unnorm, err := UnnormalizingTransform(r)

		if err != nil {
			t.Fatalf("%v: unexpected error %v", r, err)
		}

		if got := unnorm.Apply(geometry.Pt(0, 0)); !pointsEqual(got, geometry.FromImagePoint(r.Min), 1e-9) {
			t.Errorf("%v: (0,0) expected at %v, got %v", r, r.Min, got)
		}

		if got := norm.Apply(geometry.Pt(float64(r.Max.X-1), float64(r.Max.Y-1))); !pointsEqual(got, geometry.Pt(1, 1), 1e-9) {
			t.Errorf("%v: bottom right expected at (1,1), got %v", r, got)
		}

		for i := 0; i < 10; i++ {
			p := geometry.Pt(
				float64(r.Min.X)+rng.Float64()*float64(r.Dx()-1),
				float64(r.Min.Y)+rng.Float64()*float64(r.Dy()-1),
			)

			if got := unnorm.Apply(norm.Apply(p)); !pointsEqual(got, p, 1e-9) {
				t.Errorf("%v: round trip of %v gave %v", r, p, got)
			}
		}
	}
}

func TestNormalizingEmptyRect(t *testing.T) {

	for _, r := range []image.Rectangle{{}, image.Rect(5, 5, 5, 20), image.Rect(0, 0, 10, 0)} {

		if _, err := UnnormalizingTransform(r); err != ErrEmptyRect {
			t.Errorf("%v: expected ErrEmptyRect, got %v", r, err)
		}

		if _, err := NormalizingTransform(r); err != ErrEmptyRect {
			t.Errorf("%v: expected ErrEmptyRect, got %v", r, err)
		}
	}
}
