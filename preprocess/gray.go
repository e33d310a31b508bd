package preprocess

import (
	"fmt"
	"image"

	"github.com/swdee/go-landmark"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ToGray converts any image to 8 bit grayscale with its origin moved to 0,0.
// A *image.Gray already at the origin is returned without copying.
func ToGray(img image.Image) *image.Gray {

	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	return gray
}

// MatToGray converts a BGR, BGRA or single channel Mat into a grayscale
// raster for landmark prediction.  The pixels are copied so the Mat may be
// closed afterwards.
func MatToGray(src gocv.Mat) (*landmark.Gray, error) {

	if src.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()

	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		return nil, fmt.Errorf("unsupported Mat with %d channels", src.Channels())
	}

	if gray.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("unsupported Mat type %v, expected 8 bit pixels", gray.Type())
	}

	pix, err := gray.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error accessing Mat pixels: %w", err)
	}

	buf := make([]uint8, len(pix))
	copy(buf, pix)

	return landmark.NewGrayFromPixels(buf, gray.Rows(), gray.Cols(), gray.Cols())
}
