package render

import (
	"image"
	"testing"

	"github.com/swdee/go-landmark"
	"github.com/swdee/go-landmark/geometry"
)

// squareFace lays the jaw and eyebrow landmarks of a 68 point detection
// around the square from (100,100) to (200,200)
func squareFace() landmark.FullObjectDetection {

	det := landmark.FullObjectDetection{
		Rect:  image.Rect(100, 100, 200, 200),
		Parts: make([]geometry.Point, 68),
	}

	// jaw runs down the left side, along the bottom and up the right side
	for i := 0; i <= 16; i++ {
		switch {
		case i <= 4:
			det.Parts[i] = geometry.Pt(100, 100+float64(i)*25)
		case i <= 12:
			det.Parts[i] = geometry.Pt(100+float64(i-4)*12.5, 200)
		default:
			det.Parts[i] = geometry.Pt(200, 200-float64(i-12)*25)
		}
	}

	// eyebrows along the top from left to right
	for i := 17; i <= 26; i++ {
		det.Parts[i] = geometry.Pt(100+float64(i-16)*100.0/11, 100)
	}

	for i := 27; i < 68; i++ {
		det.Parts[i] = geometry.Pt(150, 150)
	}

	return det
}

func TestOutlinePolygon(t *testing.T) {

	det := squareFace()

	tests := []struct {
		name     string
		distance float64
		bounds   image.Rectangle
	}{
		{"grown", 10, image.Rect(90, 90, 210, 210)},
		{"shrunk", -10, image.Rect(110, 110, 190, 190)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			pts := OutlinePolygon(det, tc.distance)

			if len(pts) < 4 {
				t.Fatalf("expected an outline polygon, got %d points", len(pts))
			}

			b := image.Rectangle{Min: pts[0], Max: pts[0]}

			for _, p := range pts {
				b = b.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
			}

			// allow a pixel for rounding of the round joins
			if abs(b.Min.X-tc.bounds.Min.X) > 1 || abs(b.Min.Y-tc.bounds.Min.Y) > 1 ||
				abs(b.Max.X-1-tc.bounds.Max.X) > 1 || abs(b.Max.Y-1-tc.bounds.Max.Y) > 1 {
				t.Errorf("expected bounds near %v, got %v", tc.bounds, b)
			}
		})
	}
}

func TestOutlinePolygonOtherModel(t *testing.T) {

	det := landmark.FullObjectDetection{Parts: make([]geometry.Point, 5)}

	if pts := OutlinePolygon(det, 10); pts != nil {
		t.Errorf("expected no outline for a 5 point detection, got %v", pts)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
