package landmark

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/swdee/go-landmark/geometry"
)

/*
Model wire format, all values little endian with no padding:

	uint32  shape length N, then N float32 initial shape values x0,y0,x1,y1...
	uint32  number of stages S
	uint32  trees per stage T
	S*T trees, each:
	    uint32  number of splits K
	    K x     (uint64 idx1, uint64 idx2, float32 thresh)
	    uint32  number of leaves L
	    uint32  leaf vector length V
	    L*V     float32 leaf values
	uint32  anchor table stages, uint32 anchors per stage
	        uint64 anchor indices
	uint32  delta table stages, uint32 deltas per stage
	        float32 x, float32 y delta pairs
*/

// maxCount bounds every count read from a model stream so that a corrupt
// header fails instead of allocating without limit
const maxCount = 1 << 24

// preallocLimit caps slice capacity reserved from an unverified count
const preallocLimit = 4096

// DefaultModelFile is the file name used by DefaultModelPath
const DefaultModelFile = "shape_predictor.bin"

// DefaultModelPath returns the platform application data location of the
// landmark model, <user config dir>/go-landmark/shape_predictor.bin
func DefaultModelPath() (string, error) {

	dir, err := os.UserConfigDir()

	if err != nil {
		return "", fmt.Errorf("unable to locate user config directory: %w", err)
	}

	return filepath.Join(dir, "go-landmark", DefaultModelFile), nil
}

// LoadFile reads a model from the file at path
func LoadFile(path string) (*ShapePredictor, error) {

	info, err := os.Stat(path)

	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}

	if info.IsDir() {
		return nil, &ModelLoadError{Path: path, Err: errors.New("model file is a directory")}
	}

	f, err := os.Open(path)

	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}

	defer f.Close()

	sp, err := Load(f)

	if err != nil {
		var lerr *ModelLoadError

		if errors.As(err, &lerr) {
			lerr.Path = path
		}

		return nil, err
	}

	return sp, nil
}

// Load reads a model from r.  Any read failure or structural problem is
// returned as a *ModelLoadError wrapping ErrTruncated, ErrMalformed or the
// underlying I/O error.
func Load(r io.Reader) (*ShapePredictor, error) {

	d := &decoder{r: bufio.NewReader(r)}

	// initial shape
	n := d.count()
	initialShape := make(Shape, 0, min(n, preallocLimit))

	for i := 0; i < n && d.err == nil; i++ {
		initialShape = append(initialShape, d.float())
	}

	d.shapeLen = len(initialShape)

	// forests
	numStages := d.count()
	treesPerStage := d.count()
	forests := make([][]RegressionTree, 0, min(numStages, preallocLimit))

	for s := 0; s < numStages && d.err == nil; s++ {

		forest := make([]RegressionTree, 0, min(treesPerStage, preallocLimit))

		for t := 0; t < treesPerStage && d.err == nil; t++ {
			forest = append(forest, d.tree())
		}

		forests = append(forests, forest)
	}

	// anchor indices
	anchorStages := d.count()
	anchorsPerStage := d.count()
	anchorIdx := make([][]int, 0, min(anchorStages, preallocLimit))

	for s := 0; s < anchorStages && d.err == nil; s++ {

		anchors := make([]int, 0, min(anchorsPerStage, preallocLimit))

		for i := 0; i < anchorsPerStage && d.err == nil; i++ {
			anchors = append(anchors, d.index())
		}

		anchorIdx = append(anchorIdx, anchors)
	}

	// deltas
	deltaStages := d.count()
	deltasPerStage := d.count()
	deltas := make([][]geometry.Point, 0, min(deltaStages, preallocLimit))

	for s := 0; s < deltaStages && d.err == nil; s++ {

		stage := make([]geometry.Point, 0, min(deltasPerStage, preallocLimit))

		for i := 0; i < deltasPerStage && d.err == nil; i++ {
			x := d.float()
			y := d.float()
			stage = append(stage, geometry.Pt(x, y))
		}

		deltas = append(deltas, stage)
	}

	if d.err != nil {
		return nil, &ModelLoadError{Err: d.err}
	}

	sp, err := New(initialShape, forests, anchorIdx, deltas)

	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}

	return sp, nil
}

// SaveFile writes the model to the file at path
func (sp *ShapePredictor) SaveFile(path string) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("unable to create model file: %w", err)
	}

	if err := sp.Save(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// Save writes the model to w in the format read by Load.  Values are stored
// with float32 precision.  The format records a single tree count and
// feature pixel count for all stages, so models whose stages differ in
// either cannot be saved.
func (sp *ShapePredictor) Save(w io.Writer) error {

	numStages := len(sp.forests)
	treesPerStage, featuresPerStage := 0, 0

	if numStages > 0 {
		treesPerStage = len(sp.forests[0])
		featuresPerStage = len(sp.anchorIdx[0])
	}

	for s := 0; s < numStages; s++ {
		if len(sp.forests[s]) != treesPerStage || len(sp.anchorIdx[s]) != featuresPerStage {
			return fmt.Errorf("stage %d differs in size from stage 0, the model format requires uniform stages", s)
		}
	}

	e := &encoder{w: bufio.NewWriter(w)}

	e.count(len(sp.initialShape))

	for _, v := range sp.initialShape {
		e.float(v)
	}

	e.count(numStages)
	e.count(treesPerStage)

	for s := range sp.forests {
		for t := range sp.forests[s] {
			e.tree(&sp.forests[s][t])
		}
	}

	e.count(numStages)
	e.count(featuresPerStage)

	for _, anchors := range sp.anchorIdx {
		for _, a := range anchors {
			e.uint64(uint64(a))
		}
	}

	e.count(numStages)
	e.count(featuresPerStage)

	for _, stage := range sp.deltas {
		for _, p := range stage {
			e.float(p.X)
			e.float(p.Y)
		}
	}

	if e.err != nil {
		return fmt.Errorf("unable to write model: %w", e.err)
	}

	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("unable to write model: %w", err)
	}

	return nil
}

// decoder reads little endian model values, remembering the first error.
// Once an error is recorded every read returns a zero value.
type decoder struct {
	r   *bufio.Reader
	buf [8]byte
	err error
	// shapeLen is the initial shape length every leaf vector must match
	shapeLen int
}

// read fills the first n bytes of the buffer
func (d *decoder) read(n int) []byte {

	if d.err != nil {
		return nil
	}

	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			d.err = ErrTruncated
		} else {
			d.err = err
		}
		return nil
	}

	return d.buf[:n]
}

func (d *decoder) uint32() uint32 {
	b := d.read(4)

	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) uint64() uint64 {
	b := d.read(8)

	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint64(b)
}

// count reads a uint32 length and rejects values above maxCount
func (d *decoder) count() int {

	n := d.uint32()

	if d.err == nil && n > maxCount {
		d.err = fmt.Errorf("%w: count %d exceeds limit %d", ErrMalformed, n, maxCount)
		return 0
	}

	return int(n)
}

// index reads a uint64 index and rejects values that do not fit an int
func (d *decoder) index() int {

	v := d.uint64()

	if d.err == nil && v > math.MaxInt32 {
		d.err = fmt.Errorf("%w: index %d out of range", ErrMalformed, v)
		return 0
	}

	return int(v)
}

func (d *decoder) float() float64 {
	return float64(math.Float32frombits(d.uint32()))
}

// tree reads one regression tree
func (d *decoder) tree() RegressionTree {

	var t RegressionTree

	numSplits := d.count()
	t.Splits = make([]SplitFeature, 0, min(numSplits, preallocLimit))

	for i := 0; i < numSplits && d.err == nil; i++ {
		idx1 := d.index()
		idx2 := d.index()
		thresh := d.float()

		t.Splits = append(t.Splits, SplitFeature{Idx1: idx1, Idx2: idx2, Thresh: thresh})
	}

	numLeaves := d.count()
	leafLen := d.count()

	if d.err == nil && leafLen != d.shapeLen {
		d.err = fmt.Errorf("%w: leaf vector length %d does not match shape length %d",
			ErrMalformed, leafLen, d.shapeLen)
	}

	t.LeafValues = make([][]float64, 0, min(numLeaves, preallocLimit))

	for i := 0; i < numLeaves && d.err == nil; i++ {

		leaf := make([]float64, leafLen)

		for j := range leaf {
			leaf[j] = d.float()
		}

		t.LeafValues = append(t.LeafValues, leaf)
	}

	return t
}

// encoder writes little endian model values, remembering the first error
type encoder struct {
	w   *bufio.Writer
	buf [8]byte
	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) uint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

func (e *encoder) uint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.write(e.buf[:8])
}

func (e *encoder) count(n int) {
	e.uint32(uint32(n))
}

func (e *encoder) float(v float64) {
	e.uint32(math.Float32bits(float32(v)))
}

// tree writes one regression tree
func (e *encoder) tree(t *RegressionTree) {

	e.count(len(t.Splits))

	for _, s := range t.Splits {
		e.uint64(uint64(s.Idx1))
		e.uint64(uint64(s.Idx2))
		e.float(s.Thresh)
	}

	leafLen := 0

	if len(t.LeafValues) > 0 {
		leafLen = len(t.LeafValues[0])
	}

	e.count(len(t.LeafValues))
	e.count(leafLen)

	for _, leaf := range t.LeafValues {
		for _, v := range leaf {
			e.float(v)
		}
	}
}
