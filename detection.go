package landmark

import (
	"image"

	"github.com/swdee/go-landmark/geometry"
)

// FullObjectDetection is the result of a prediction, the face rectangle and
// the landmark positions in image pixel coordinates
type FullObjectDetection struct {
	Rect  image.Rectangle
	Parts []geometry.Point
}

// NumParts returns the number of landmarks
func (d FullObjectDetection) NumParts() int {
	return len(d.Parts)
}

// Part returns landmark i
func (d FullObjectDetection) Part(i int) geometry.Point {
	return d.Parts[i]
}

// Empty reports whether the detection holds no landmarks, as happens for an
// empty face rectangle
func (d FullObjectDetection) Empty() bool {
	return len(d.Parts) == 0
}

// ImagePoints returns the landmarks rounded to the nearest pixel
func (d FullObjectDetection) ImagePoints() []image.Point {

	pts := make([]image.Point, len(d.Parts))

	for i, p := range d.Parts {
		pts[i] = p.Round()
	}

	return pts
}
