package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StateMean is the 1x4 state of a landmark, x, y position followed by the
// x, y velocity
type StateMean []float64

// StateCov represents the 4x4 state covariance matrix
type StateCov struct {
	*mat.Dense
}

// Measurement is an observed x, y landmark position
type Measurement []float64

// KalmanFilter is a constant velocity Kalman filter for a single landmark
// position.  Process and measurement noise scale with the size of the face
// the landmark belongs to, so the same weights suit near and far faces.
type KalmanFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float64) *KalmanFilter {

	ndim := 2
	dt := 1.0

	// create identity matrix for motionMat with velocity coupling
	motionMat := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// updateMat picks the position out of the state
	updateMat := mat.NewDense(2, 4, nil)

	for i := 0; i < ndim; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &KalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// NewStateCov returns a zeroed covariance matrix
func NewStateCov() *StateCov {
	return &StateCov{mat.NewDense(4, 4, nil)}
}

// Initiate initializes the state mean and covariance from a first
// measurement.  scale is the face height in pixels.
func (kf *KalmanFilter) Initiate(mean StateMean, covariance *StateCov,
	measurement Measurement, scale float64) {

	copy(mean[:2], measurement[:2])

	// velocity components
	mean[2] = 0
	mean[3] = 0

	std := StateMean{
		2 * kf.stdWeightPosition * scale,  // x position
		2 * kf.stdWeightPosition * scale,  // y position
		10 * kf.stdWeightVelocity * scale, // x velocity
		10 * kf.stdWeightVelocity * scale, // y velocity
	}

	covariance.Zero()

	for i, v := range std {
		covariance.Set(i, i, v*v)
	}
}

// Predict advances the state mean and covariance one frame
func (kf *KalmanFilter) Predict(mean StateMean, covariance *StateCov, scale float64) {

	std := StateMean{
		kf.stdWeightPosition * scale,
		kf.stdWeightPosition * scale,
		kf.stdWeightVelocity * scale,
		kf.stdWeightVelocity * scale,
	}

	// motion covariance with variances on the diagonal
	motionCov := mat.NewDense(4, 4, nil)

	for i, v := range std {
		motionCov.Set(i, i, v*v)
	}

	meanVec := mat.NewVecDense(4, mean)
	meanVec.MulVec(kf.motionMat, mat.VecDenseCopyOf(meanVec))

	var fp, cov mat.Dense
	fp.Mul(kf.motionMat, covariance.Dense)
	cov.Mul(&fp, kf.motionMat.T())
	cov.Add(&cov, motionCov)

	covariance.Dense = &cov
}

// Update corrects the state mean and covariance with a new measurement
func (kf *KalmanFilter) Update(mean StateMean, covariance *StateCov,
	measurement Measurement, scale float64) error {

	// project the state mean and covariance to measurement space
	projectedMean, projectedCov := kf.project(mean, covariance, scale)

	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	B := mat.NewDense(4, 2, nil)
	B.Mul(covariance.Dense, kf.updateMat.T())

	// kalmanGain is 2x4, the transpose of the usual gain
	var kalmanGain mat.Dense

	if err := chol.SolveTo(&kalmanGain, B.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(2, []float64{
		measurement[0] - projectedMean[0],
		measurement[1] - projectedMean[1],
	})

	correction := mat.NewVecDense(4, nil)
	correction.MulVec(kalmanGain.T(), innovation)

	for i := range mean[:4] {
		mean[i] += correction.AtVec(i)
	}

	temp := mat.NewDense(4, 2, nil)
	temp.Mul(kalmanGain.T(), projectedCov)

	temp2 := mat.NewDense(4, 4, nil)
	temp2.Mul(temp, &kalmanGain)

	newCov := mat.NewDense(4, 4, nil)
	newCov.Sub(covariance.Dense, temp2)

	covariance.Dense = newCov

	return nil
}

// project maps the state mean and covariance into measurement space
func (kf *KalmanFilter) project(mean StateMean, covariance *StateCov,
	scale float64) (Measurement, *mat.SymDense) {

	std := kf.stdWeightPosition * scale

	projectedMeanVec := mat.NewVecDense(2, nil)
	projectedMeanVec.MulVec(kf.updateMat, mat.NewVecDense(4, mean[:4]))

	temp := mat.NewDense(2, 4, nil)
	temp.Mul(kf.updateMat, covariance.Dense)
	temp2 := mat.NewDense(2, 2, nil)
	temp2.Mul(temp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(2, nil)

	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			projectedCov.SetSym(i, j, temp2.At(i, j))
		}
		// measurement noise
		projectedCov.SetSym(i, i, projectedCov.At(i, i)+std*std)
	}

	return Measurement{projectedMeanVec.AtVec(0), projectedMeanVec.AtVec(1)}, projectedCov
}
