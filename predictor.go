package landmark

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/swdee/go-landmark/geometry"
	"github.com/swdee/go-landmark/transform"
)

// ShapePredictor is a trained cascade of regression tree forests.  It is
// immutable once built and safe for concurrent use by multiple goroutines.
type ShapePredictor struct {
	// initialShape is the mean shape in normalized face rectangle space
	initialShape Shape
	// initialPoints caches initialShape as points
	initialPoints []geometry.Point
	// forests holds the trees of each cascade stage
	forests [][]RegressionTree
	// anchorIdx holds, per stage and feature pixel, the landmark the pixel is
	// positioned relative to
	anchorIdx [][]int
	// deltas holds, per stage and feature pixel, the offset from the anchor
	// landmark in normalized space
	deltas [][]geometry.Point
	// scratch provides per call working buffers
	scratch *scratchPool
}

// New builds a ShapePredictor after checking the structure of every stage.
// forests, anchorIdx and deltas must all have one entry per cascade stage.
func New(initialShape Shape, forests [][]RegressionTree, anchorIdx [][]int,
	deltas [][]geometry.Point) (*ShapePredictor, error) {

	if _, err := NewShape(initialShape); err != nil {
		return nil, err
	}

	if len(forests) != len(anchorIdx) || len(forests) != len(deltas) {
		return nil, fmt.Errorf("%w: %d forests, %d anchor tables and %d delta tables",
			ErrMalformed, len(forests), len(anchorIdx), len(deltas))
	}

	numParts := initialShape.NumParts()
	maxFeatures := 0

	for s := range forests {

		numFeatures := len(anchorIdx[s])

		if len(deltas[s]) != numFeatures {
			return nil, fmt.Errorf("%w: stage %d has %d anchors and %d deltas",
				ErrMalformed, s, numFeatures, len(deltas[s]))
		}

		for i, a := range anchorIdx[s] {
			if a < 0 || a >= numParts {
				return nil, fmt.Errorf("%w: stage %d anchor %d references landmark %d of %d",
					ErrMalformed, s, i, a, numParts)
			}
		}

		for t := range forests[s] {
			if err := forests[s][t].validate(len(initialShape), numFeatures); err != nil {
				return nil, fmt.Errorf("stage %d tree %d: %w", s, t, err)
			}
		}

		maxFeatures = max(maxFeatures, numFeatures)
	}

	return &ShapePredictor{
		initialShape:  initialShape,
		initialPoints: initialShape.Points(),
		forests:       forests,
		anchorIdx:     anchorIdx,
		deltas:        deltas,
		scratch:       newScratchPool(maxFeatures, numParts),
	}, nil
}

// NumParts returns the number of landmarks predicted
func (sp *ShapePredictor) NumParts() int {
	return sp.initialShape.NumParts()
}

// NumStages returns the number of cascade stages
func (sp *ShapePredictor) NumStages() int {
	return len(sp.forests)
}

// NumTrees returns the number of trees in a cascade stage
func (sp *ShapePredictor) NumTrees(stage int) int {
	return len(sp.forests[stage])
}

// NumFeatures returns the number of feature pixels sampled in a cascade stage
func (sp *ShapePredictor) NumFeatures(stage int) int {
	return len(sp.anchorIdx[stage])
}

// InitialShape returns a copy of the mean shape the cascade starts from
func (sp *ShapePredictor) InitialShape() Shape {
	return sp.initialShape.Clone()
}

// Predict locates the landmarks of the face inside rect.  Every cascade stage
// is run, there is no early exit.  Feature pixels that fall outside img read
// as zero.  An empty rect yields a detection without parts.
func (sp *ShapePredictor) Predict(img GrayImage, rect image.Rectangle) FullObjectDetection {

	det := FullObjectDetection{Rect: rect}

	tformToImg, err := transform.UnnormalizingTransform(rect)

	if err != nil {
		return det
	}

	buf := sp.scratch.Get()
	defer sp.scratch.Put(buf)

	current := sp.initialShape.Clone()

	for s := range sp.forests {

		tform := findTformBetweenShapes(sp.initialPoints, current.pointsInto(buf.points))

		features := buf.features[:len(sp.anchorIdx[s])]
		extractFeaturePixelValues(img, tform.M, tformToImg, current,
			sp.anchorIdx[s], sp.deltas[s], features)

		for t := range sp.forests[s] {
			delta, _ := sp.forests[s][t].Eval(features)
			current.add(delta)
		}
	}

	det.Parts = make([]geometry.Point, current.NumParts())

	for i := range det.Parts {
		det.Parts[i] = tformToImg.Apply(current.Part(i))
	}

	return det
}

// PredictAll runs Predict for every rectangle, spreading the faces over one
// worker per CPU.  Results are returned in the order of rects.
func (sp *ShapePredictor) PredictAll(img GrayImage, rects []image.Rectangle) []FullObjectDetection {

	out := make([]FullObjectDetection, len(rects))
	numWorkers := min(runtime.NumCPU(), len(rects))

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	// each worker handles faces i = w, w+numWorkers, w+2*numWorkers
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()

			for i := w; i < len(rects); i += numWorkers {
				out[i] = sp.Predict(img, rects[i])
			}
		}(w)
	}

	wg.Wait()

	return out
}

// findTformBetweenShapes returns the similarity transform mapping the from
// shape onto the to shape.  A single landmark carries no rotation or scale so
// the identity is used, as it is when the fit degenerates.
func findTformBetweenShapes(from, to []geometry.Point) transform.Affine {

	if len(from) == 1 {
		return transform.Identity()
	}

	tform, err := transform.FindSimilarityTransform(from, to)

	if err != nil {
		return transform.Identity()
	}

	return tform
}

// extractFeaturePixelValues samples the image at each feature pixel of a
// stage.  A pixel is placed at its anchor landmark in the current shape plus
// its delta rotated and scaled by m, then mapped into the image with
// tformToImg.  Positions outside the image read as zero.
func extractFeaturePixelValues(img GrayImage, m geometry.Matrix2,
	tformToImg transform.Affine, current Shape, anchorIdx []int,
	deltas []geometry.Point, out []float64) {

	rows, cols := img.Rows(), img.Cols()

	for i, a := range anchorIdx {

		p := tformToImg.Apply(m.MulPoint(deltas[i]).Add(current.Part(a))).Round()

		if p.X >= 0 && p.Y >= 0 && p.X < cols && p.Y < rows {
			out[i] = float64(img.Intensity(p.Y, p.X))
		} else {
			out[i] = 0
		}
	}
}
