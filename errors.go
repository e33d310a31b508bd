package landmark

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when the model stream ends before all of the
	// declared data has been read
	ErrTruncated = errors.New("model data is truncated")
	// ErrMalformed is returned when the model data violates a structural
	// invariant of the predictor
	ErrMalformed = errors.New("model data is malformed")
)

// ModelLoadError reports a facial landmark model that could not be loaded.
// No predictor is returned alongside it.
type ModelLoadError struct {
	// Path is the model file, empty when loading from a stream
	Path string
	// Err is the underlying cause
	Err error
}

// Error returns a readable description of the load failure
func (e *ModelLoadError) Error() string {

	if e.Path == "" {
		return fmt.Sprintf("facial landmark model could not be loaded: %v", e.Err)
	}

	return fmt.Sprintf("facial landmark model could not be loaded from %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
