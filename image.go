package landmark

import (
	"fmt"
	"image"
)

// GrayImage is the grayscale raster landmarks are predicted on.  Row 0,
// column 0 is the top left pixel.  Implementations must be safe for
// concurrent reads when used with PredictAll.
type GrayImage interface {
	Rows() int
	Cols() int
	Intensity(row, col int) uint8
}

// Gray is a GrayImage backed by an 8 bit pixel buffer
type Gray struct {
	pix    []uint8
	rows   int
	cols   int
	stride int
}

var _ GrayImage = (*Gray)(nil)

// NewGray wraps img without copying its pixels.  Rows and columns are
// counted from img.Bounds().Min.
func NewGray(img *image.Gray) *Gray {

	b := img.Bounds()

	if b.Empty() {
		return &Gray{}
	}

	return &Gray{
		pix:    img.Pix[img.PixOffset(b.Min.X, b.Min.Y):],
		rows:   b.Dy(),
		cols:   b.Dx(),
		stride: img.Stride,
	}
}

// NewGrayFromPixels wraps a row major pixel buffer with the given stride
func NewGrayFromPixels(pix []uint8, rows, cols, stride int) (*Gray, error) {

	if rows < 0 || cols < 0 || stride < cols {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d with stride %d",
			cols, rows, stride)
	}

	if rows > 0 && len(pix) < (rows-1)*stride+cols {
		return nil, fmt.Errorf("pixel buffer of %d bytes too small for %dx%d with stride %d",
			len(pix), cols, rows, stride)
	}

	return &Gray{pix: pix, rows: rows, cols: cols, stride: stride}, nil
}

// Rows returns the raster height
func (g *Gray) Rows() int {
	return g.rows
}

// Cols returns the raster width
func (g *Gray) Cols() int {
	return g.cols
}

// Intensity returns the pixel value at row, col
func (g *Gray) Intensity(row, col int) uint8 {
	return g.pix[row*g.stride+col]
}

// Pix returns the underlying pixel buffer
func (g *Gray) Pix() []uint8 {
	return g.pix
}

// Stride returns the distance in bytes between vertically adjacent pixels
func (g *Gray) Stride() int {
	return g.stride
}

// Image returns the raster as an *image.Gray sharing its pixels
func (g *Gray) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.pix,
		Stride: g.stride,
		Rect:   image.Rect(0, 0, g.cols, g.rows),
	}
}
