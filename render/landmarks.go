package render

import (
	"image"
	"image/color"
	"strconv"

	"github.com/swdee/go-landmark"
	"gocv.io/x/gocv"
)

/* 68 point facial landmark groups
0-16:  Jaw line
17-21: Right eyebrow
22-26: Left eyebrow
27-30: Nose bridge
30-35: Lower nose
36-41: Right eye
42-47: Left eye
48-59: Outer lips
60-67: Inner lips
*/

// landmarkGroup is a run of consecutive landmarks joined by lines
type landmarkGroup struct {
	start, end int
	closed     bool
}

var (
	// landmarkGroups defines the facial features of the 68 point model
	landmarkGroups = []landmarkGroup{
		{0, 16, false},
		{17, 21, false},
		{22, 26, false},
		{27, 30, false},
		{30, 35, true},
		{36, 41, true},
		{42, 47, true},
		{48, 59, true},
		{60, 67, true},
	}
	// landmarkTotal is the number of landmarks in the grouped model
	landmarkTotal = 68
)

// LandmarkStyle defines the parameters used for rendering landmarks
type LandmarkStyle struct {
	// PointColor is the color of each landmark point
	PointColor color.RGBA
	// PointRadius of the circle drawn at each landmark, 0 disables points
	PointRadius int
	// Contours joins the facial feature groups of 68 point detections
	// with lines colored per feature
	Contours bool
	// LineThickness of contour lines
	LineThickness int
}

// DefaultLandmarkStyle returns default landmark style settings
func DefaultLandmarkStyle() LandmarkStyle {
	return LandmarkStyle{
		PointColor:    Yellow,
		PointRadius:   2,
		Contours:      true,
		LineThickness: 1,
	}
}

// Landmarks renders the landmarks of every detection on the image
func Landmarks(img *gocv.Mat, dets []landmark.FullObjectDetection, style LandmarkStyle) {

	for _, det := range dets {

		pts := det.ImagePoints()

		// contour lines go below the points
		if style.Contours && len(pts) == landmarkTotal {
			for g, group := range landmarkGroups {
				clr := landmarkGroupColors[g]

				for i := group.start; i < group.end; i++ {
					gocv.Line(img, pts[i], pts[i+1], clr, style.LineThickness)
				}

				if group.closed {
					gocv.Line(img, pts[group.end], pts[group.start], clr, style.LineThickness)
				}
			}
		}

		if style.PointRadius <= 0 {
			continue
		}

		for _, p := range pts {
			gocv.Circle(img, p, style.PointRadius, style.PointColor, -1)
		}
	}
}

// LandmarkNumbers writes the index of each landmark next to its point,
// useful when checking a model's landmark order
func LandmarkNumbers(img *gocv.Mat, det landmark.FullObjectDetection, font Font) {

	for i, p := range det.ImagePoints() {
		gocv.PutTextWithParams(img, strconv.Itoa(i), p.Add(image.Pt(font.LeftPad, 0)),
			font.Face, font.Scale, font.Color, font.Thickness, font.LineType, false)
	}
}
