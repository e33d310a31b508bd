package geometry

import (
	"image"
	"math"
)

// Point is a real valued 2D coordinate used for both shape space and image
// space positions
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Div returns p divided by k
func (p Point) Div(k float64) Point {
	return Point{X: p.X / k, Y: p.Y / k}
}

// Dot returns the dot product of p and q
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// LengthSquared returns the squared euclidean length of p
func (p Point) LengthSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Length returns the euclidean length of p
func (p Point) Length() float64 {
	return Pythag(p.X, p.Y)
}

// Outer returns the 2x2 outer product p * trans(q)
func (p Point) Outer(q Point) Matrix2 {
	return Matrix2{
		{p.X * q.X, p.X * q.Y},
		{p.Y * q.X, p.Y * q.Y},
	}
}

// Round converts p to the nearest integer pixel position.  Halves are
// rounded up, so 2.5 becomes 3 and -2.5 becomes -2.
func (p Point) Round() image.Point {
	return image.Point{
		X: int(math.Floor(p.X + 0.5)),
		Y: int(math.Floor(p.Y + 0.5)),
	}
}

// FromImagePoint converts an integer pixel position to a Point
func FromImagePoint(p image.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// Mean returns the centroid of pts, or the zero Point for an empty slice
func Mean(pts []Point) Point {
	var m Point

	if len(pts) == 0 {
		return m
	}

	for _, p := range pts {
		m = m.Add(p)
	}

	return m.Div(float64(len(pts)))
}
