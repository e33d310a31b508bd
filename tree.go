package landmark

import (
	"fmt"
)

// SplitFeature is an internal tree node.  It compares the difference of two
// feature pixel values against a threshold.
type SplitFeature struct {
	Idx1   int
	Idx2   int
	Thresh float64
}

// RegressionTree is a complete binary tree stored in level order.  Splits
// holds the internal nodes and LeafValues the shape displacement stored at
// each leaf, so len(LeafValues) == len(Splits)+1 and is a power of two.
type RegressionTree struct {
	Splits     []SplitFeature
	LeafValues [][]float64
}

// leftChild returns the level order index of the left child of node i
func leftChild(i int) int {
	return 2*i + 1
}

// rightChild returns the level order index of the right child of node i
func rightChild(i int) int {
	return 2*i + 2
}

// leafIndexOf converts a level order node index past the internal nodes into
// an index into LeafValues
func leafIndexOf(i, numSplits int) int {
	return i - numSplits
}

// NumLeaves returns the number of leaves in the tree
func (t *RegressionTree) NumLeaves() int {
	return len(t.LeafValues)
}

// Eval walks the tree using the feature pixel values and returns the
// displacement stored at the reached leaf along with the leaf index.  The
// returned slice is owned by the tree and must not be modified.
func (t *RegressionTree) Eval(features []float64) ([]float64, int) {

	numSplits := len(t.Splits)
	i := 0

	for i < numSplits {
		s := &t.Splits[i]

		if features[s.Idx1]-features[s.Idx2] > s.Thresh {
			i = leftChild(i)
		} else {
			i = rightChild(i)
		}
	}

	leaf := leafIndexOf(i, numSplits)

	return t.LeafValues[leaf], leaf
}

// validate checks the tree is complete, that every leaf has shapeLen values
// and that split indices address one of numFeatures feature pixels
func (t *RegressionTree) validate(shapeLen, numFeatures int) error {

	leaves := len(t.LeafValues)

	if leaves != len(t.Splits)+1 {
		return fmt.Errorf("%w: %d leaves for %d splits", ErrMalformed, leaves, len(t.Splits))
	}

	if leaves&(leaves-1) != 0 {
		return fmt.Errorf("%w: leaf count %d is not a power of two", ErrMalformed, leaves)
	}

	for i, s := range t.Splits {
		if s.Idx1 < 0 || s.Idx1 >= numFeatures || s.Idx2 < 0 || s.Idx2 >= numFeatures {
			return fmt.Errorf("%w: split %d indexes (%d, %d) outside %d feature pixels",
				ErrMalformed, i, s.Idx1, s.Idx2, numFeatures)
		}
	}

	for i, leaf := range t.LeafValues {
		if len(leaf) != shapeLen {
			return fmt.Errorf("%w: leaf %d has %d values, expected %d",
				ErrMalformed, i, len(leaf), shapeLen)
		}
	}

	return nil
}
