package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-landmark"
	"github.com/swdee/go-landmark/geometry"
	"gocv.io/x/gocv"
)

// templateDetection places the alignment landmarks of a 68 point detection
// at the default template scaled by s and shifted by off
func templateDetection(params AlignParams, s float64, off geometry.Point) landmark.FullObjectDetection {

	det := landmark.FullObjectDetection{
		Rect:  image.Rect(0, 0, 200, 200),
		Parts: make([]geometry.Point, 68),
	}

	for i, idx := range params.Indices {
		det.Parts[idx] = params.Template[i].Mul(s).Add(off)
	}

	return det
}

func TestAlignTransform(t *testing.T) {

	params := DefaultAlignParams()
	det := templateDetection(params, 100, geometry.Pt(40, 60))

	tform, err := AlignTransform(det, params)
	require.NoError(t, err)

	span := 1 + 2*params.Padding

	for i, idx := range params.Indices {
		want := params.Template[i].Add(geometry.Pt(params.Padding, params.Padding)).
			Mul(float64(params.Size) / span)
		got := tform.Apply(det.Part(idx))

		assert.InDelta(t, want.X, got.X, 1e-6)
		assert.InDelta(t, want.Y, got.Y, 1e-6)
	}

	// no rotation for an upright face
	assert.InDelta(t, 0, tform.M[0][1], 1e-9)
	assert.InDelta(t, 0, tform.M[1][0], 1e-9)
}

func TestAlignTransformTooFewLandmarks(t *testing.T) {

	det := landmark.FullObjectDetection{Parts: make([]geometry.Point, 5)}

	_, err := AlignTransform(det, DefaultAlignParams())
	assert.ErrorIs(t, err, ErrTooFewLandmarks)

	params := DefaultAlignParams()
	params.Template = params.Template[:2]

	_, err = AlignTransform(templateDetection(DefaultAlignParams(), 1, geometry.Point{}), params)
	assert.Error(t, err)
}

func TestToGray(t *testing.T) {

	rgba := image.NewRGBA(image.Rect(10, 10, 14, 12))
	rgba.Set(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	rgba.Set(13, 11, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	gray := ToGray(rgba)

	assert.Equal(t, image.Rect(0, 0, 4, 2), gray.Bounds())
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(3, 1).Y)

	// gray images at the origin are not copied
	g := image.NewGray(image.Rect(0, 0, 3, 3))
	assert.Same(t, g, ToGray(g))
}

func TestMatToGray(t *testing.T) {

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 20, 30, gocv.MatTypeCV8UC3)
	defer img.Close()

	gray, err := MatToGray(img)
	require.NoError(t, err)

	assert.Equal(t, 20, gray.Rows())
	assert.Equal(t, 30, gray.Cols())

	// pure red in BGR order converts to 0.299 * 255
	assert.InDelta(t, 76, int(gray.Intensity(5, 5)), 1)

	empty := gocv.NewMat()
	defer empty.Close()

	_, err = MatToGray(empty)
	assert.Error(t, err)
}

func TestAlignFace(t *testing.T) {

	params := DefaultAlignParams()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer img.Close()

	chip, err := AlignFace(img, templateDetection(params, 100, geometry.Pt(50, 50)), params)
	require.NoError(t, err)
	defer chip.Close()

	assert.Equal(t, params.Size, chip.Rows())
	assert.Equal(t, params.Size, chip.Cols())
}
