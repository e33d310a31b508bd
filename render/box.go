package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-landmark/detect"
	"github.com/swdee/go-landmark/tracker"
	"gocv.io/x/gocv"
)

// boxLabel holds the placement of a box's text label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// FaceBoxes renders the rectangles of detected faces labelled with their
// detection score
func FaceBoxes(img *gocv.Mat, faces []detect.Face, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(faces))

	for i, face := range faces {
		clr := classColors[i%len(classColors)]
		text := fmt.Sprintf("face %.1f", face.Score)

		labels = append(labels, drawBox(img, face.Rect, clr, text, font, lineThickness))
	}

	drawLabels(img, labels, font)
}

// TrackerBoxes renders the rectangles of tracked faces labelled with their
// track ID
func TrackerBoxes(img *gocv.Mat, faces []*tracker.Face, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(faces))

	for _, face := range faces {
		clr := classColors[face.ID%len(classColors)]
		text := fmt.Sprintf("face %d", face.ID)

		labels = append(labels, drawBox(img, face.Rect(), clr, text, font, lineThickness))
	}

	drawLabels(img, labels, font)
}

// drawBox draws rect and returns the placement of its text label
func drawBox(img *gocv.Mat, rect image.Rectangle, clr color.RGBA, text string,
	font Font, lineThickness int) boxLabel {

	gocv.Rectangle(img, rect, clr, lineThickness)

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
			rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, rect.Min.Y),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, rect.Min.Y-font.BottomPad),
	}
}

// drawLabels draws the box labels last so they are the top most layer and
// are not overlapped by landmark lines
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {

	for _, box := range labels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
