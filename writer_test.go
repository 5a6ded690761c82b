package labframe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/labframe/internal/fsutil"
)

func TestWriteOne_RoundTrip(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	fs.WriteFile("a.txt", []byte(fileContent(
		[]string{"sample: quartz", "power: 12 mW"},
		"time delay (ps)\tsignal 1 (V)\tsignal 2 (mV)",
		[]string{"0 0.5 1.5", "1.5 0.25 1.25", "10 0.125 1.125"},
	)))

	m, err := LoadOneFS(fs, "a.txt")
	require.NoError(t, err)
	require.NoError(t, WriteOneFS(fs, m, "b.txt"))

	// Header strings survive the round trip byte-for-byte.
	data, err := fs.ReadFile("b.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "time delay (ps)\tsignal 1 (V)\tsignal 2 (mV)\n")

	back, err := LoadOneFS(fs, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, m.Dimensions(), back.Dimensions())
	assert.Equal(t, m.Variables(), back.Variables())
	assert.Equal(t, m.Coord("time delay (ps)"), back.Coord("time delay (ps)"))
	for _, name := range m.Variables() {
		assert.Equal(t, m.Variable(name).Values, back.Variable(name).Values, name)
	}
	assert.Equal(t, m.Attrs(), back.Attrs())
}

func TestWriteOne_RejectsMultidimensional(t *testing.T) {
	t.Parallel()

	m := NewMeasurement()
	require.NoError(t, m.AddDimension("x", []float64{1, 2}))
	require.NoError(t, m.AddDimension("t", []float64{0, 1}))

	fs := fsutil.NewMemoryFileSystem()
	err := WriteOneFS(fs, m, "out.txt")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "2 dimensions"))
}

func TestWriteOne_RejectsScalarVariable(t *testing.T) {
	t.Parallel()

	m := NewMeasurement()
	require.NoError(t, m.AddDimension("t", []float64{0, 1}))
	require.NoError(t, m.AddVariable("c", &Variable{Dims: nil, Values: []float64{5}}))

	err := WriteOneFS(fsutil.NewMemoryFileSystem(), m, "out.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"c"`)
}
