package preprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Resizer scales an image down to fit within a maximum size whilst keeping
// its aspect, and maps rectangles found in the scaled image back to the
// source.  Face detection on large photos runs on the scaled image.
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// maxWidth is the largest width to scale to
	maxWidth int
	// maxHeight is the largest height to scale to
	maxHeight int
	// scale applied to the source, never above 1
	scale float64
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer for scaling a srcWidth x srcHeight image to fit
// within maxWidth x maxHeight.  Images already within bounds are not scaled.
func NewResizer(srcWidth, srcHeight, maxWidth, maxHeight int) *Resizer {
	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}

	// precalculate scaling dimensions
	r.preCalc()

	return r
}

// preCalc the scale factor and scaled dimensions
func (r *Resizer) preCalc() {

	r.scale = 1
	r.resizeW = r.srcWidth
	r.resizeH = r.srcHeight

	if r.srcWidth <= 0 || r.srcHeight <= 0 {
		return
	}

	scaleW := float64(r.maxWidth) / float64(r.srcWidth)
	scaleH := float64(r.maxHeight) / float64(r.srcHeight)

	if s := min(scaleW, scaleH); s < 1 {
		r.scale = s
		r.resizeW = max(int(float64(r.srcWidth)*s), 1)
		r.resizeH = max(int(float64(r.srcHeight)*s), 1)
	}
}

// Resize returns src scaled to the resizer dimensions.  src is returned as is
// when no scaling is needed.
func (r *Resizer) Resize(src *image.Gray) *image.Gray {

	if r.scale == 1 {
		return src
	}

	dst := image.NewGray(image.Rect(0, 0, r.resizeW, r.resizeH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst
}

// ScaleRect maps a rectangle in the scaled image back to the source image,
// clipped to the source bounds
func (r *Resizer) ScaleRect(rect image.Rectangle) image.Rectangle {

	inv := 1 / r.scale

	out := image.Rect(
		int(float64(rect.Min.X)*inv+0.5),
		int(float64(rect.Min.Y)*inv+0.5),
		int(float64(rect.Max.X)*inv+0.5),
		int(float64(rect.Max.Y)*inv+0.5),
	)

	return out.Intersect(image.Rect(0, 0, r.srcWidth, r.srcHeight))
}

// ScaleFactor returns the scale factor applied to the source
func (r *Resizer) ScaleFactor() float64 {
	return r.scale
}

// Size returns the scaled image dimensions
func (r *Resizer) Size() image.Point {
	return image.Pt(r.resizeW, r.resizeH)
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
