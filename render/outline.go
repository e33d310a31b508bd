package render

import (
	"image"
	"image/color"

	clipper "github.com/ctessum/go.clipper"
	"github.com/swdee/go-landmark"
	"gocv.io/x/gocv"
)

// faceContour returns the closed face boundary of a 68 point detection, the
// jaw line followed by the eyebrows from left to right
func faceContour(det landmark.FullObjectDetection) []image.Point {

	pts := det.ImagePoints()

	if len(pts) != landmarkTotal {
		return nil
	}

	contour := make([]image.Point, 0, 27)
	contour = append(contour, pts[0:17]...)

	for i := 26; i >= 17; i-- {
		contour = append(contour, pts[i])
	}

	return contour
}

// OutlinePolygon returns the face boundary of a 68 point detection grown by
// distance pixels with rounded corners.  A negative distance shrinks it.  Nil
// is returned for other landmark models.
func OutlinePolygon(det landmark.FullObjectDetection, distance float64) []image.Point {

	contour := faceContour(det)

	if contour == nil {
		return nil
	}

	// convert the contour points to Clipper Path
	var path clipper.Path

	for _, pt := range contour {
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(distance)

	// keep the largest polygon, the offset of a face contour is one piece
	// unless it self intersects
	var best clipper.Path
	bestArea := 0.0

	for _, sol := range solution {
		if a := pathArea(sol); a > bestArea {
			best, bestArea = sol, a
		}
	}

	var points []image.Point

	for _, pt := range best {
		points = append(points, image.Pt(int(pt.X), int(pt.Y)))
	}

	return points
}

// FaceOutline draws the offset face boundary of each 68 point detection
func FaceOutline(img *gocv.Mat, dets []landmark.FullObjectDetection,
	distance float64, clr color.RGBA, lineThickness int) {

	for _, det := range dets {

		points := OutlinePolygon(det, distance)

		if len(points) < 3 {
			continue
		}

		pv := gocv.NewPointsVectorFromPoints([][]image.Point{points})
		gocv.Polylines(img, pv, true, clr, lineThickness)
		pv.Close()
	}
}

// pathArea returns the unsigned area of a closed path
func pathArea(path clipper.Path) float64 {

	var a float64

	for i := range path {
		p, q := path[i], path[(i+1)%len(path)]
		a += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}

	if a < 0 {
		a = -a
	}

	return a / 2
}
