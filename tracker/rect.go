package tracker

import (
	"image"
)

// CalcIoU calculates the Intersection over Union (IoU) of two rectangles
func CalcIoU(a, b image.Rectangle) float64 {

	inter := a.Intersect(b)

	if inter.Empty() {
		return 0
	}

	ia := area(inter)
	ua := area(a) + area(b) - ia

	if ua <= 0 {
		return 0
	}

	return ia / ua
}

// area returns the number of pixels covered by r
func area(r image.Rectangle) float64 {
	if r.Empty() {
		return 0
	}
	return float64(r.Dx()) * float64(r.Dy())
}
