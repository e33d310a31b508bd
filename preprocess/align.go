package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-landmark"
	"github.com/swdee/go-landmark/geometry"
	"github.com/swdee/go-landmark/transform"
	"gocv.io/x/gocv"
)

// Landmark indices of the 68 point face model used for alignment
const (
	LeftEyeOuter  = 36
	RightEyeOuter = 45
	NoseTip       = 33
)

// ErrTooFewLandmarks is returned when a detection does not contain the
// landmarks used for alignment
var ErrTooFewLandmarks = errors.New("detection has too few landmarks for alignment")

// AlignParams defines the face chip produced by AlignFace
type AlignParams struct {
	// Size is the width and height of the square chip in pixels
	Size int
	// Padding is the border added around the template, as a fraction of the
	// template size
	Padding float64
	// Indices are the landmarks aligned onto Template
	Indices []int
	// Template holds the position of each landmark in Indices within a unit
	// square face
	Template []geometry.Point
	// BorderColor fills chip pixels that fall outside the source image
	BorderColor color.RGBA
}

// DefaultAlignParams returns a 150 pixel chip aligned on the outer eye
// corners and nose tip of the 68 point mean face
func DefaultAlignParams() AlignParams {
	return AlignParams{
		Size:    150,
		Padding: 0.25,
		Indices: []int{LeftEyeOuter, RightEyeOuter, NoseTip},
		Template: []geometry.Point{
			{X: 0.1941, Y: 0.1692},
			{X: 0.8059, Y: 0.1692},
			{X: 0.5000, Y: 0.5443},
		},
		BorderColor: color.RGBA{R: 0, G: 0, B: 0, A: 255},
	}
}

// AlignTransform returns the similarity transform mapping the face of det
// into chip pixel coordinates
func AlignTransform(det landmark.FullObjectDetection, params AlignParams) (transform.Affine, error) {

	if len(params.Indices) != len(params.Template) {
		return transform.Identity(), fmt.Errorf("%d alignment indices for %d template points",
			len(params.Indices), len(params.Template))
	}

	from := make([]geometry.Point, len(params.Indices))
	to := make([]geometry.Point, len(params.Indices))

	size := float64(params.Size)
	span := 1 + 2*params.Padding

	for i, idx := range params.Indices {

		if idx < 0 || idx >= det.NumParts() {
			return transform.Identity(), fmt.Errorf("%w: landmark %d of %d",
				ErrTooFewLandmarks, idx, det.NumParts())
		}

		from[i] = det.Part(idx)
		to[i] = params.Template[i].Add(geometry.Pt(params.Padding, params.Padding)).Mul(size / span)
	}

	return transform.FindSimilarityTransform(from, to)
}

// AlignFace warps the face of det out of src into an upright square chip.
// The returned Mat must be closed by the caller.
func AlignFace(src gocv.Mat, det landmark.FullObjectDetection, params AlignParams) (gocv.Mat, error) {

	tform, err := AlignTransform(det, params)

	if err != nil {
		return gocv.NewMat(), err
	}

	m := affineMat(tform)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, m, image.Pt(params.Size, params.Size),
		gocv.InterpolationLinear, gocv.BorderConstant, params.BorderColor)

	return dst, nil
}

// affineMat converts a transform into the 2x3 matrix form used by OpenCV
func affineMat(t transform.Affine) gocv.Mat {

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)

	m.SetDoubleAt(0, 0, t.M[0][0])
	m.SetDoubleAt(0, 1, t.M[0][1])
	m.SetDoubleAt(0, 2, t.B.X)
	m.SetDoubleAt(1, 0, t.M[1][0])
	m.SetDoubleAt(1, 1, t.M[1][1])
	m.SetDoubleAt(1, 2, t.B.Y)

	return m
}
