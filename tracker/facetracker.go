package tracker

import (
	"fmt"
	"image"
	"sort"

	"github.com/swdee/go-landmark"
)

// FaceState represents the state of a tracked face
type FaceState int

const (
	// Face is currently being tracked
	Tracked FaceState = 1
	// Face was not matched in the latest frame
	Lost FaceState = 2
	// Face has been lost for too long and is dropped
	Removed FaceState = 3
)

// Face is a single face followed across frames
type Face struct {
	// ID is unique for the life of the tracker
	ID int
	// Detection holds the smoothed landmarks of the latest matched frame
	Detection landmark.FullObjectDetection
	// State of the track
	State FaceState
	// StartFrame is the frame the face was first seen in
	StartFrame int
	// lastFrame is the latest frame the face was matched in
	lastFrame int
	smoother  *Smoother
}

// Rect returns the face rectangle of the latest matched frame
func (f *Face) Rect() image.Rectangle {
	return f.Detection.Rect
}

// FaceTracker follows multiple faces through a video, associating each
// frame's landmark detections with existing tracks by rectangle overlap and
// smoothing the landmarks of every track
type FaceTracker struct {
	params SmootherParams
	// matchThresh is the minimum IoU for a detection to continue a track
	matchThresh float64
	// maxTimeLost is the number of frames a track survives unmatched
	maxTimeLost int
	frameID     int
	nextID      int
	faces       []*Face
}

// NewFaceTracker returns a tracker.  matchThresh is the minimum rectangle
// IoU to associate a detection with a track and maxTimeLost the number of
// frames an unmatched track is kept.
func NewFaceTracker(params SmootherParams, matchThresh float64, maxTimeLost int) *FaceTracker {
	return &FaceTracker{
		params:      params,
		matchThresh: matchThresh,
		maxTimeLost: maxTimeLost,
	}
}

// Reset clears all tracks
func (ft *FaceTracker) Reset() {
	ft.frameID = 0
	ft.nextID = 0
	ft.faces = nil
}

// candidate is a possible track to detection association
type candidate struct {
	track int
	det   int
	iou   float64
}

// Update associates the detections of a new frame with the tracked faces and
// returns the faces currently tracked.  Empty detections are ignored.
func (ft *FaceTracker) Update(dets []landmark.FullObjectDetection) ([]*Face, error) {

	ft.frameID++

	var valid []landmark.FullObjectDetection

	for _, det := range dets {
		if !det.Empty() {
			valid = append(valid, det)
		}
	}

	// greedy association on decreasing overlap
	var cands []candidate

	for ti, face := range ft.faces {
		for di, det := range valid {
			if iou := CalcIoU(face.Rect(), det.Rect); iou >= ft.matchThresh {
				cands = append(cands, candidate{track: ti, det: di, iou: iou})
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].iou > cands[j].iou
	})

	trackUsed := make([]bool, len(ft.faces))
	detUsed := make([]bool, len(valid))

	for _, c := range cands {

		if trackUsed[c.track] || detUsed[c.det] {
			continue
		}

		trackUsed[c.track] = true
		detUsed[c.det] = true

		face := ft.faces[c.track]
		smoothed, err := face.smoother.Smooth(valid[c.det])

		if err != nil {
			return nil, fmt.Errorf("error smoothing face %d: %w", face.ID, err)
		}

		face.Detection = smoothed
		face.State = Tracked
		face.lastFrame = ft.frameID
	}

	// unmatched tracks are lost, then removed once too old
	var kept []*Face

	for ti, face := range ft.faces {

		if !trackUsed[ti] {
			face.State = Lost

			if ft.frameID-face.lastFrame > ft.maxTimeLost {
				face.State = Removed
				continue
			}
		}

		kept = append(kept, face)
	}

	// unmatched detections start new tracks
	for di, det := range valid {

		if detUsed[di] {
			continue
		}

		ft.nextID++

		face := &Face{
			ID:         ft.nextID,
			State:      Tracked,
			StartFrame: ft.frameID,
			lastFrame:  ft.frameID,
			smoother:   NewSmoother(ft.params),
		}

		smoothed, err := face.smoother.Smooth(det)

		if err != nil {
			return nil, fmt.Errorf("error starting face %d: %w", face.ID, err)
		}

		face.Detection = smoothed
		kept = append(kept, face)
	}

	ft.faces = kept

	var tracked []*Face

	for _, face := range ft.faces {
		if face.State == Tracked {
			tracked = append(tracked, face)
		}
	}

	return tracked, nil
}
