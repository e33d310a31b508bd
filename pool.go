package landmark

import (
	"sync"

	"github.com/swdee/go-landmark/geometry"
)

// scratch holds the per prediction working buffers
type scratch struct {
	// features holds the feature pixel values of the current stage
	features []float64
	// points holds the current shape as points for the similarity fit
	points []geometry.Point
}

// scratchPool hands out scratch buffers sized for one predictor so that
// concurrent predictions never share mutable state
type scratchPool struct {
	pool sync.Pool
}

// newScratchPool returns a pool producing buffers for up to maxFeatures
// feature pixels and numParts landmarks
func newScratchPool(maxFeatures, numParts int) *scratchPool {

	p := &scratchPool{}

	p.pool.New = func() any {
		return &scratch{
			features: make([]float64, maxFeatures),
			points:   make([]geometry.Point, numParts),
		}
	}

	return p
}

// Get returns a scratch buffer from the pool
func (p *scratchPool) Get() *scratch {
	return p.pool.Get().(*scratch)
}

// Put returns a buffer to the pool.  It must not be used afterwards.
func (p *scratchPool) Put(s *scratch) {
	p.pool.Put(s)
}
