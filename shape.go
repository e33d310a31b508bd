package landmark

import (
	"fmt"

	"github.com/swdee/go-landmark/geometry"
)

// Shape is an ordered set of landmark coordinates stored flattened as
// x0, y0, x1, y1, ...  A valid Shape always has an even length.
type Shape []float64

// NewShape validates and returns values as a Shape
func NewShape(values []float64) (Shape, error) {

	if len(values) == 0 || len(values)%2 != 0 {
		return nil, fmt.Errorf("%w: shape length %d is not a positive even number",
			ErrMalformed, len(values))
	}

	return Shape(values), nil
}

// ShapeFromPoints flattens pts into a Shape
func ShapeFromPoints(pts []geometry.Point) Shape {

	s := make(Shape, 2*len(pts))

	for i, p := range pts {
		s[2*i] = p.X
		s[2*i+1] = p.Y
	}

	return s
}

// NumParts returns the number of landmarks in the shape
func (s Shape) NumParts() int {
	return len(s) / 2
}

// Part returns the location of landmark i
func (s Shape) Part(i int) geometry.Point {
	return geometry.Point{X: s[2*i], Y: s[2*i+1]}
}

// Points returns the landmarks as a slice of points
func (s Shape) Points() []geometry.Point {
	return s.pointsInto(make([]geometry.Point, s.NumParts()))
}

// pointsInto writes the landmarks into dst which must hold NumParts points
func (s Shape) pointsInto(dst []geometry.Point) []geometry.Point {
	for i := range dst {
		dst[i] = s.Part(i)
	}
	return dst
}

// Clone returns a copy of the shape
func (s Shape) Clone() Shape {
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

// add accumulates delta into the shape element wise
func (s Shape) add(delta []float64) {
	for i, d := range delta {
		s[i] += d
	}
}
