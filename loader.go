package landmark

import (
	"sync"
)

// ModelLoader loads a model file once, on first use, and shares the result
// with every caller.  A failed load is not retried, every caller receives the
// same *ModelLoadError so landmark dependent features can be disabled.
type ModelLoader struct {
	path string
	once sync.Once
	sp   *ShapePredictor
	err  error
}

// NewModelLoader returns a loader for the model file at path.  An empty
// path uses DefaultModelPath.
func NewModelLoader(path string) *ModelLoader {
	return &ModelLoader{path: path}
}

// Predictor returns the loaded model, reading it on the first call
func (l *ModelLoader) Predictor() (*ShapePredictor, error) {

	l.once.Do(func() {

		path := l.path

		if path == "" {
			var err error
			path, err = DefaultModelPath()

			if err != nil {
				l.err = &ModelLoadError{Err: err}
				return
			}
		}

		l.sp, l.err = LoadFile(path)
	})

	return l.sp, l.err
}

// Path returns the configured model path
func (l *ModelLoader) Path() string {
	return l.path
}
