package transform

import (
	"errors"
	"image"

	"github.com/swdee/go-landmark/geometry"
)

// ErrEmptyRect is returned when a rectangle has no area
var ErrEmptyRect = errors.New("rectangle is empty")

// unitSquare holds the normalized corners matched against rectCorners
var unitSquare = []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

// rectCorners returns the top left, top right and bottom right pixel of r.
// The rectangle's Max is exclusive so the last pixel is Max - (1,1).
func rectCorners(r image.Rectangle) []geometry.Point {
	right := float64(r.Max.X - 1)
	bottom := float64(r.Max.Y - 1)

	return []geometry.Point{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: right, Y: float64(r.Min.Y)},
		{X: right, Y: bottom},
	}
}

// NormalizingTransform returns the transform mapping the pixels of r onto the
// unit square, top left pixel to (0,0) and bottom right pixel to (1,1)
func NormalizingTransform(r image.Rectangle) (Affine, error) {

	if r.Empty() {
		return Identity(), ErrEmptyRect
	}

	return FindAffineTransform(rectCorners(r), unitSquare)
}

// UnnormalizingTransform returns the transform mapping the unit square onto
// the pixels of r.  It is the inverse of NormalizingTransform.
func UnnormalizingTransform(r image.Rectangle) (Affine, error) {

	if r.Empty() {
		return Identity(), ErrEmptyRect
	}

	return FindAffineTransform(unitSquare, rectCorners(r))
}
