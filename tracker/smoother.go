package tracker

import (
	"github.com/swdee/go-landmark"
	"github.com/swdee/go-landmark/geometry"
)

// SmootherParams configures landmark smoothing across video frames
type SmootherParams struct {
	// StdWeightPosition is the position noise relative to the face height
	StdWeightPosition float64
	// StdWeightVelocity is the velocity noise relative to the face height
	StdWeightVelocity float64
	// MaxMissed is the number of consecutive frames without a detection
	// after which the smoothing state is discarded
	MaxMissed int
}

// DefaultSmootherParams returns the weights used by ByteTrack's box filter
// applied to landmark positions
func DefaultSmootherParams() SmootherParams {
	return SmootherParams{
		StdWeightPosition: 1.0 / 20,
		StdWeightVelocity: 1.0 / 160,
		MaxMissed:         5,
	}
}

// pointState is the filter state of one landmark
type pointState struct {
	mean StateMean
	cov  *StateCov
}

// Smoother reduces frame to frame jitter of the landmarks of a single face
// by running a Kalman filter per landmark.  It is not safe for concurrent use.
type Smoother struct {
	params SmootherParams
	kf     *KalmanFilter
	points []pointState
	missed int
}

// NewSmoother returns a Smoother with the given parameters
func NewSmoother(params SmootherParams) *Smoother {
	return &Smoother{
		params: params,
		kf:     NewKalmanFilter(params.StdWeightPosition, params.StdWeightVelocity),
	}
}

// Reset discards the smoothing state
func (s *Smoother) Reset() {
	s.points = nil
	s.missed = 0
}

// Active reports whether the smoother holds state from earlier frames
func (s *Smoother) Active() bool {
	return s.points != nil
}

// Smooth filters the landmarks of det against the previous frames and
// returns the smoothed detection.  An empty detection counts as a missed
// frame and is returned unchanged.  A change in landmark count restarts
// the filter.
func (s *Smoother) Smooth(det landmark.FullObjectDetection) (landmark.FullObjectDetection, error) {

	if det.Empty() {
		s.missed++

		if s.missed > s.params.MaxMissed {
			s.Reset()
		}

		return det, nil
	}

	s.missed = 0
	scale := float64(max(det.Rect.Dy(), 1))

	if len(s.points) != det.NumParts() {
		s.initiate(det, scale)
		return det, nil
	}

	out := landmark.FullObjectDetection{
		Rect:  det.Rect,
		Parts: make([]geometry.Point, det.NumParts()),
	}

	for i := range s.points {
		ps := &s.points[i]
		p := det.Part(i)

		s.kf.Predict(ps.mean, ps.cov, scale)

		if err := s.kf.Update(ps.mean, ps.cov, Measurement{p.X, p.Y}, scale); err != nil {
			s.Reset()
			return det, err
		}

		out.Parts[i] = geometry.Pt(ps.mean[0], ps.mean[1])
	}

	return out, nil
}

// initiate starts a filter for every landmark of det
func (s *Smoother) initiate(det landmark.FullObjectDetection, scale float64) {

	s.points = make([]pointState, det.NumParts())

	for i := range s.points {
		p := det.Part(i)

		s.points[i] = pointState{
			mean: make(StateMean, 4),
			cov:  NewStateCov(),
		}

		s.kf.Initiate(s.points[i].mean, s.points[i].cov, Measurement{p.X, p.Y}, scale)
	}
}
