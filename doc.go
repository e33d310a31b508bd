/*
go-landmark predicts facial landmark positions from a grayscale image and a
face bounding box using a cascade of regression tree forests (an ensemble of
regression trees in the style of Kazemi and Sullivan).

A model is loaded once from a trained binary file and is then immutable, so a
single ShapePredictor can serve any number of goroutines:

	sp, err := landmark.LoadFile("shape_predictor.bin")

	if err != nil {
		log.Fatal(err)
	}

	det := sp.Predict(landmark.NewGray(grayImg), faceRect)

	for i, p := range det.Parts {
		fmt.Printf("landmark %d @ (%.1f, %.1f)\n", i, p.X, p.Y)
	}

The geometry and transform sub packages hold the small linear algebra and the
affine/similarity transform fitting used by the cascade.  The preprocess,
detect, render and tracker packages adapt images, face detectors, drawing and
video smoothing around the predictor.

See example code and usage in the example subdirectory.
*/
package landmark
