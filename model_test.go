package landmark

import (
	"bufio"
	"bytes"
	"errors"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modelBytes serializes sp
func modelBytes(t *testing.T, sp *ShapePredictor) []byte {
	var buf bytes.Buffer
	require.NoError(t, sp.Save(&buf))
	return buf.Bytes()
}

func TestSaveLoadRoundTrip(t *testing.T) {

	sp := randomModel(t, 10, 68, 3, 6, 3, 30, 0.05)
	data := modelBytes(t, sp)

	loaded, err := Load(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, sp.initialShape, loaded.initialShape)
	assert.Equal(t, sp.forests, loaded.forests)
	assert.Equal(t, sp.anchorIdx, loaded.anchorIdx)
	assert.Equal(t, sp.deltas, loaded.deltas)

	assert.Equal(t, data, modelBytes(t, loaded))

	img := gradientImage(100, 100)
	rect := image.Rect(10, 10, 90, 90)
	assert.Equal(t, sp.Predict(img, rect), loaded.Predict(img, rect))
}

func TestSaveLoadNoStages(t *testing.T) {

	sp, err := New(Shape{0.5, 0.5}, nil, nil, nil)
	require.NoError(t, err)

	loaded, err := Load(bytes.NewReader(modelBytes(t, sp)))
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.NumStages())
	assert.Equal(t, Shape{0.5, 0.5}, loaded.InitialShape())
}

func TestLoadTruncated(t *testing.T) {

	data := modelBytes(t, randomModel(t, 11, 5, 2, 3, 2, 10, 0.05))

	for _, n := range []int{0, 3, 4, 17, len(data) / 2, len(data) - 1} {

		_, err := Load(bytes.NewReader(data[:n]))
		require.Error(t, err, "length %d", n)

		var lerr *ModelLoadError
		assert.True(t, errors.As(err, &lerr), "length %d", n)
		assert.ErrorIs(t, err, ErrTruncated, "length %d", n)
	}
}

func TestLoadMalformed(t *testing.T) {

	tests := []struct {
		name  string
		write func(e *encoder)
	}{
		{"odd shape", func(e *encoder) {
			e.count(3)
			e.float(0)
			e.float(0)
			e.float(0)
			e.count(0)
			e.count(0)
			e.count(0)
			e.count(0)
			e.count(0)
			e.count(0)
		}},
		{"count limit", func(e *encoder) {
			e.count(maxCount + 1)
		}},
		{"leaf length", func(e *encoder) {
			e.count(2)
			e.float(0)
			e.float(0)
			e.count(1)
			e.count(1)
			e.count(0)
			e.count(1)
			e.count(4)
		}},
		{"leaf count", func(e *encoder) {
			e.count(2)
			e.float(0)
			e.float(0)
			e.count(1)
			e.count(1)
			// one split with two features and three leaves
			e.count(1)
			e.uint64(0)
			e.uint64(1)
			e.float(0)
			e.count(3)
			e.count(2)
			for i := 0; i < 6; i++ {
				e.float(0)
			}
			e.count(1)
			e.count(2)
			e.uint64(0)
			e.uint64(0)
			e.count(1)
			e.count(2)
			for i := 0; i < 4; i++ {
				e.float(0)
			}
		}},
		{"anchor out of range", func(e *encoder) {
			e.count(2)
			e.float(0)
			e.float(0)
			e.count(1)
			e.count(0)
			e.count(1)
			e.count(1)
			e.uint64(7)
			e.count(1)
			e.count(1)
			e.float(0)
			e.float(0)
		}},
		{"index range", func(e *encoder) {
			e.count(2)
			e.float(0)
			e.float(0)
			e.count(1)
			e.count(1)
			e.count(1)
			e.uint64(1 << 40)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			var buf bytes.Buffer
			e := &encoder{w: bufio.NewWriter(&buf)}
			tc.write(e)
			require.NoError(t, e.err)
			require.NoError(t, e.w.Flush())

			_, err := Load(&buf)

			var lerr *ModelLoadError
			require.True(t, errors.As(err, &lerr))
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), "facial landmark model could not be loaded")
		})
	}
}

func TestSaveNonUniformStages(t *testing.T) {

	a := randomModel(t, 12, 4, 1, 2, 1, 3, 0.1)
	b := randomModel(t, 13, 4, 1, 3, 1, 3, 0.1)

	sp, err := New(a.initialShape,
		append(a.forests, b.forests...),
		append(a.anchorIdx, b.anchorIdx...),
		append(a.deltas, b.deltas...),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, sp.Save(&buf))
}

func TestLoadFile(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultModelFile)

	sp := randomModel(t, 14, 68, 2, 4, 2, 20, 0.05)
	require.NoError(t, sp.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sp.forests, loaded.forests)

	// missing file
	missing := filepath.Join(dir, "missing.bin")
	_, err = LoadFile(missing)

	var lerr *ModelLoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, missing, lerr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// directory
	_, err = LoadFile(dir)
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, dir, lerr.Path)
}

func TestLoadFileMalformedPath(t *testing.T) {

	path := filepath.Join(t.TempDir(), "short.bin")
	sp := randomModel(t, 15, 4, 1, 1, 1, 2, 0.05)
	require.NoError(t, sp.SaveFile(path))

	data := modelBytes(t, sp)
	require.NoError(t, os.WriteFile(path, data[:len(data)-2], 0o644))

	_, err := LoadFile(path)

	var lerr *ModelLoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, path, lerr.Path)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Contains(t, err.Error(), path)
}

func TestModelLoader(t *testing.T) {

	path := filepath.Join(t.TempDir(), DefaultModelFile)
	require.NoError(t, randomModel(t, 16, 5, 1, 2, 1, 4, 0.05).SaveFile(path))

	l := NewModelLoader(path)
	first, err := l.Predictor()
	require.NoError(t, err)

	second, err := l.Predictor()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, path, l.Path())

	bad := NewModelLoader(filepath.Join(t.TempDir(), "missing.bin"))
	_, err1 := bad.Predictor()
	_, err2 := bad.Predictor()

	var lerr *ModelLoadError
	assert.True(t, errors.As(err1, &lerr))
	assert.Same(t, err1, err2)
}
