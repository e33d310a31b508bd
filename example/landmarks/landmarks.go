/*
Example code showing how to detect faces in an image, predict their facial
landmarks and render the results.
*/
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/swdee/go-landmark"
	"github.com/swdee/go-landmark/detect"
	"github.com/swdee/go-landmark/preprocess"
	"github.com/swdee/go-landmark/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/shape_predictor_68.bin", "Facial landmark shape predictor model file")
	imgFile := flag.String("i", "../data/face.jpg", "Image file to run landmark prediction on")
	saveFile := flag.String("o", "../data/face-out.jpg", "The output JPG file with landmark markers")
	cascadeFile := flag.String("c", "../data/models/facefinder", "Pigo face detection cascade file")
	rectStr := flag.String("r", "", "Face rectangle as x,y,w,h, skips face detection when set")
	chipPrefix := flag.String("a", "", "Save aligned face chips with this file prefix, eg: ../data/chip")

	flag.Parse()

	// load image with EXIF orientation applied
	src, err := imaging.Open(*imgFile, imaging.AutoOrientation(true))

	if err != nil {
		log.Fatal("Error reading image: ", err)
	}

	gray := preprocess.ToGray(src)

	start := time.Now()

	// find faces
	var faces []detect.Face

	if *rectStr != "" {
		rect, err := parseRect(*rectStr)

		if err != nil {
			log.Fatal("Invalid face rectangle: ", err)
		}

		faces = []detect.Face{{Rect: rect}}

	} else {
		detector, err := detect.NewDetectorFromFile(*cascadeFile, detect.DefaultParams())

		if err != nil {
			log.Fatal("Error initializing face detector: ", err)
		}

		faces = detector.Detect(gray)
	}

	endDetect := time.Now()

	log.Printf("Found %d faces\n", len(faces))

	// load the model, without it only the face boxes are rendered
	loader := landmark.NewModelLoader(*modelFile)
	sp, err := loader.Predictor()

	if err != nil {
		log.Printf("Facial landmark model could not be loaded, landmarks disabled: %v\n", err)
	}

	endLoad := time.Now()

	var dets []landmark.FullObjectDetection

	if sp != nil {
		dets = sp.PredictAll(landmark.NewGray(gray), detect.Rects(faces))
	}

	endPredict := time.Now()

	// output landmarks to stdout
	for i, det := range dets {
		fmt.Printf("face %d @ (%d %d %d %d)\n", i, det.Rect.Min.X, det.Rect.Min.Y,
			det.Rect.Max.X, det.Rect.Max.Y)

		for j, p := range det.Parts {
			fmt.Printf("  landmark %d @ (%.1f %.1f)\n", j, p.X, p.Y)
		}
	}

	// render results
	img, err := gocv.ImageToMatRGB(src)

	if err != nil {
		log.Fatal("Error converting image: ", err)
	}

	defer img.Close()

	// face chips are cut from the image before annotation
	clean := img.Clone()
	defer clean.Close()

	render.FaceOutline(&img, dets, 8, render.Pink, 1)
	render.Landmarks(&img, dets, render.DefaultLandmarkStyle())
	render.FaceBoxes(&img, faces, render.DefaultFont(), 2)

	endRendering := time.Now()

	log.Printf("First run speed: detect=%s, model load=%s, landmarks=%s, rendering=%s, total time=%s\n",
		endDetect.Sub(start).String(),
		endLoad.Sub(endDetect).String(),
		endPredict.Sub(endLoad).String(),
		endRendering.Sub(endPredict).String(),
		endRendering.Sub(start).String(),
	)

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved landmark result to %s\n", *saveFile)

	if *chipPrefix != "" {
		saveChips(clean, dets, *chipPrefix)
	}

	// optional code.  run benchmark to get average time
	if sp != nil {
		runBenchmark(sp, landmark.NewGray(gray), detect.Rects(faces))
	}

	log.Println("done")
}

// parseRect reads a rectangle given as x,y,w,h
func parseRect(s string) (image.Rectangle, error) {

	parts := strings.Split(s, ",")

	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("expected x,y,w,h, got %q", s)
	}

	v := make([]int, 4)

	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))

		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid value %q: %w", p, err)
		}

		v[i] = n
	}

	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// saveChips writes an aligned face chip for each detection
func saveChips(img gocv.Mat, dets []landmark.FullObjectDetection, prefix string) {

	params := preprocess.DefaultAlignParams()

	for i, det := range dets {

		chip, err := preprocess.AlignFace(img, det, params)

		if err != nil {
			log.Printf("Unable to align face %d: %v\n", i, err)
			continue
		}

		file := fmt.Sprintf("%s-%d.jpg", prefix, i)

		if ok := gocv.IMWrite(file, chip); !ok {
			log.Printf("Failed to save face chip %s\n", file)
		}

		chip.Close()
	}
}

func runBenchmark(sp *landmark.ShapePredictor, img landmark.GrayImage,
	rects []image.Rectangle) {

	count := 100
	start := time.Now()

	for i := 0; i < count; i++ {
		for _, rect := range rects {
			sp.Predict(img, rect)
		}
	}

	end := time.Now()
	total := end.Sub(start)
	avg := total / time.Duration(count)

	log.Printf("Benchmark time=%s, count=%d, faces=%d, average total time=%s\n",
		total.String(), count, len(rects), avg.String(),
	)
}
