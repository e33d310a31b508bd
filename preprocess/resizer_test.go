package preprocess

import (
	"image"
	"testing"
)

func TestResizer(t *testing.T) {

	tests := []struct {
		srcWidth      int
		srcHeight     int
		maxWidth      int
		maxHeight     int
		expectedSize  image.Point
		expectedScale float64
	}{
		{1280, 720, 640, 640, image.Pt(640, 360), 0.50},
		{800, 1000, 640, 640, image.Pt(512, 640), 0.64},
		{800, 800, 640, 640, image.Pt(640, 640), 0.8},
		{320, 240, 640, 640, image.Pt(320, 240), 1},
	}

	for _, tc := range tests {
		img := image.NewGray(image.Rect(0, 0, tc.srcWidth, tc.srcHeight))

		resizer := NewResizer(tc.srcWidth, tc.srcHeight, tc.maxWidth, tc.maxHeight)
		resized := resizer.Resize(img)

		if resizer.ScaleFactor() != tc.expectedScale {
			t.Errorf("Test failed for src (%d, %d): Scalefactor incorrect, expected %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScale, resizer.ScaleFactor())
		}

		if resized.Bounds().Size() != tc.expectedSize || resizer.Size() != tc.expectedSize {
			t.Errorf("Test failed for src (%d, %d): expected size %v, got %v",
				tc.srcWidth, tc.srcHeight, tc.expectedSize, resized.Bounds().Size())
		}
	}
}

func TestResizerScaleRect(t *testing.T) {

	resizer := NewResizer(1280, 720, 640, 640)

	got := resizer.ScaleRect(image.Rect(100, 50, 200, 150))
	want := image.Rect(200, 100, 400, 300)

	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	// clipped to the source image
	got = resizer.ScaleRect(image.Rect(600, 300, 700, 400))
	want = image.Rect(1200, 600, 1280, 720)

	if got != want {
		t.Errorf("expected clipped %v, got %v", want, got)
	}
}
