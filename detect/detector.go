/*
Package detect finds face rectangles for landmark prediction using the pure
Go pigo pixel intensity comparison cascade.
*/
package detect

import (
	"fmt"
	"image"
	"os"
	"sort"

	pigo "github.com/esimov/pigo/core"
	"github.com/swdee/go-landmark/preprocess"
)

// Params defines the face detection settings
type Params struct {
	// MinSize is the smallest face size in pixels searched for
	MinSize int
	// MaxSize is the largest face size in pixels searched for
	MaxSize int
	// ShiftFactor is the sliding window step as a fraction of the window size
	ShiftFactor float64
	// ScaleFactor is the growth of the window size between scans
	ScaleFactor float64
	// Angle is the cascade rotation, 0.0 is 0 radians and 1.0 is 2*pi
	Angle float64
	// IoUThreshold is the overlap above which detections are clustered
	IoUThreshold float64
	// MinQuality discards detections scoring below it
	MinQuality float32
	// MaxImageSize scales images larger than it down before detection,
	// zero disables scaling
	MaxImageSize int
}

// DefaultParams returns the detection settings commonly used with the
// facefinder cascade
func DefaultParams() Params {
	return Params{
		MinSize:      20,
		MaxSize:      1000,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		Angle:        0.0,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
		MaxImageSize: 1024,
	}
}

// Face is a detected face
type Face struct {
	// Rect is the face rectangle in source image pixels
	Rect image.Rectangle
	// Score is the cascade detection quality
	Score float32
}

// Detector runs a face cascade over grayscale images.  It is safe for
// concurrent use.
type Detector struct {
	classifier *pigo.Pigo
	params     Params
}

// NewDetector unpacks a pigo cascade such as facefinder
func NewDetector(cascade []byte, params Params) (*Detector, error) {

	classifier, err := pigo.NewPigo().Unpack(cascade)

	if err != nil {
		return nil, fmt.Errorf("error unpacking face cascade: %w", err)
	}

	return &Detector{
		classifier: classifier,
		params:     params,
	}, nil
}

// NewDetectorFromFile reads and unpacks the cascade file at path
func NewDetectorFromFile(path string, params Params) (*Detector, error) {

	cascade, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading face cascade file: %w", err)
	}

	return NewDetector(cascade, params)
}

// Detect returns the faces found in img ordered by decreasing score
func (d *Detector) Detect(img *image.Gray) []Face {

	img = preprocess.ToGray(img)
	b := img.Bounds()

	maxSize := d.params.MaxImageSize

	if maxSize <= 0 {
		maxSize = max(b.Dx(), b.Dy())
	}

	resizer := preprocess.NewResizer(b.Dx(), b.Dy(), maxSize, maxSize)
	scaled := resizer.Resize(img)
	sb := scaled.Bounds()

	// pigo expects tightly packed rows
	pix := scaled.Pix

	if scaled.Stride != sb.Dx() {
		pix = make([]uint8, sb.Dx()*sb.Dy())

		for y := 0; y < sb.Dy(); y++ {
			copy(pix[y*sb.Dx():(y+1)*sb.Dx()], scaled.Pix[y*scaled.Stride:])
		}
	}

	cParams := pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     d.params.MaxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pix,
			Rows:   sb.Dy(),
			Cols:   sb.Dx(),
			Dim:    sb.Dx(),
		},
	}

	dets := d.classifier.RunCascade(cParams, d.params.Angle)
	dets = d.classifier.ClusterDetections(dets, d.params.IoUThreshold)

	return toFaces(dets, d.params.MinQuality, resizer)
}

// Rects returns the rectangles of faces
func Rects(faces []Face) []image.Rectangle {

	rects := make([]image.Rectangle, len(faces))

	for i, f := range faces {
		rects[i] = f.Rect
	}

	return rects
}

// toFaces converts pigo detections, centre point and side length in the
// scaled image, into source image rectangles
func toFaces(dets []pigo.Detection, minQuality float32, resizer *preprocess.Resizer) []Face {

	var faces []Face

	for _, det := range dets {

		if det.Q < minQuality {
			continue
		}

		half := det.Scale / 2
		rect := image.Rect(det.Col-half, det.Row-half, det.Col-half+det.Scale, det.Row-half+det.Scale)

		rect = resizer.ScaleRect(rect)

		if rect.Empty() {
			continue
		}

		faces = append(faces, Face{Rect: rect, Score: det.Q})
	}

	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Score > faces[j].Score
	})

	return faces
}
