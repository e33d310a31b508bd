/*
Example code showing how to follow faces through a video file, smoothing
their landmarks between frames and drawing a motion trail.
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/swdee/go-landmark"
	"github.com/swdee/go-landmark/detect"
	"github.com/swdee/go-landmark/preprocess"
	"github.com/swdee/go-landmark/render"
	"github.com/swdee/go-landmark/tracker"
	"gocv.io/x/gocv"
)

// Timing holds the accumulated time spent on each stage of processing
type Timing struct {
	Detect    time.Duration
	Landmarks time.Duration
	Track     time.Duration
	Render    time.Duration
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/shape_predictor_68.bin", "Facial landmark shape predictor model file")
	vidFile := flag.String("v", "../data/face.mp4", "Video file to run landmark tracking on")
	saveFile := flag.String("o", "../data/face-out.avi", "The output video file with landmark markers")
	cascadeFile := flag.String("c", "../data/models/facefinder", "Pigo face detection cascade file")
	trailLen := flag.Int("t", 30, "Number of frames of motion trail to draw")

	flag.Parse()

	sp, err := landmark.LoadFile(*modelFile)

	if err != nil {
		log.Fatal(err)
	}

	detector, err := detect.NewDetectorFromFile(*cascadeFile, detect.DefaultParams())

	if err != nil {
		log.Fatal("Error initializing face detector: ", err)
	}

	video, err := gocv.VideoCaptureFile(*vidFile)

	if err != nil {
		log.Fatal("Error opening video: ", err)
	}

	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))

	writer, err := gocv.VideoWriterFile(*saveFile, "MJPG", fps, width, height, true)

	if err != nil {
		log.Fatal("Error opening output video: ", err)
	}

	defer writer.Close()

	faceTracker := tracker.NewFaceTracker(tracker.DefaultSmootherParams(), 0.3, int(fps))
	trail := tracker.NewTrail(*trailLen)

	img := gocv.NewMat()
	defer img.Close()

	var timing Timing
	frames := 0

	for {
		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			break
		}

		if img.Empty() {
			continue
		}

		frames++
		start := time.Now()

		gray, err := preprocess.MatToGray(img)

		if err != nil {
			log.Fatal("Error converting frame: ", err)
		}

		// pigo runs on an image.Gray sharing the converted pixels
		faces := detector.Detect(gray.Image())
		endDetect := time.Now()

		dets := sp.PredictAll(gray, detect.Rects(faces))
		endLandmarks := time.Now()

		tracked, err := faceTracker.Update(dets)

		if err != nil {
			log.Printf("Error tracking frame %d: %v\n", frames, err)
			continue
		}

		smoothed := make([]landmark.FullObjectDetection, len(tracked))

		for i, face := range tracked {
			trail.Add(face)
			smoothed[i] = face.Detection
		}

		endTrack := time.Now()

		render.Trail(&img, tracked, trail, render.DefaultTrailStyle())
		render.Landmarks(&img, smoothed, render.DefaultLandmarkStyle())
		render.TrackerBoxes(&img, tracked, render.DefaultFont(), 1)

		endRender := time.Now()

		if err := writer.Write(img); err != nil {
			log.Fatal("Error writing frame: ", err)
		}

		timing.Detect += endDetect.Sub(start)
		timing.Landmarks += endLandmarks.Sub(endDetect)
		timing.Track += endTrack.Sub(endLandmarks)
		timing.Render += endRender.Sub(endTrack)
	}

	if frames == 0 {
		log.Fatal("No frames read from video")
	}

	avg := func(d time.Duration) string {
		return (d / time.Duration(frames)).String()
	}

	log.Printf("Processed %d frames, average detect=%s, landmarks=%s, track=%s, rendering=%s\n",
		frames, avg(timing.Detect), avg(timing.Landmarks), avg(timing.Track), avg(timing.Render))

	fmt.Printf("Saved tracking result to %s\n", *saveFile)
}
