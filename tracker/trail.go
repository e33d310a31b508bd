package tracker

import (
	"image"
	"sync"

	"github.com/swdee/go-landmark/geometry"
)

// Track represents the position history of one face
type Track struct {
	points []image.Point
}

// Trail keeps a history of face positions used for drawing a motion trail.
// The position of a face is the centroid of its landmarks.
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points keyed by face ID
	history map[int]*Track
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum
// length of the trail kept for each face.
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*Track),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*Track)
}

// Add appends the current position of face to its history
func (t *Trail) Add(face *Face) {

	if face.Detection.Empty() {
		return
	}

	t.Lock()
	defer t.Unlock()

	track, exists := t.history[face.ID]

	if !exists {
		track = &Track{}
		t.history[face.ID] = track
	}

	track.points = append(track.points, geometry.Mean(face.Detection.Parts).Round())

	// drop oldest point once history is exceeded
	if len(track.points) > t.size {
		track.points = track.points[1:]
	}
}

// GetPoints gets the point history for a face ID
func (t *Trail) GetPoints(id int) []image.Point {
	t.Lock()
	defer t.Unlock()

	if track, exists := t.history[id]; exists {
		return track.points
	}

	return nil
}
