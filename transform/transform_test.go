package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/labframe"
)

func signal(t *testing.T, values []float64, attrs map[string]string) *labframe.Measurement {
	t.Helper()
	m := labframe.NewMeasurement()
	coord := make([]float64, len(values))
	for i := range coord {
		coord[i] = float64(i)
	}
	require.NoError(t, m.AddDimension("t", coord))
	require.NoError(t, m.AddVariable("y", &labframe.Variable{
		Dims: []string{"t"}, Values: values, Attrs: attrs,
	}))
	return m
}

func TestScale(t *testing.T) {
	t.Parallel()

	m := signal(t, []float64{1, -2, 3}, nil)
	out, err := labframe.Apply(m, []labframe.Instruction{Scale("y", 10)})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, -20, 30}, out.Variable("y").Values)
	assert.Equal(t, []float64{1, -2, 3}, m.Variable("y").Values, "input untouched")
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	out, err := labframe.Apply(signal(t, []float64{1, -4, 2}, nil),
		[]labframe.Instruction{Normalize("y")})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -1, 0.5}, out.Variable("y").Values)

	_, err = labframe.Apply(signal(t, []float64{0, 0}, nil),
		[]labframe.Instruction{Normalize("y")})
	assert.Error(t, err)
}

func TestSubtractBaseline(t *testing.T) {
	t.Parallel()

	out, err := labframe.Apply(signal(t, []float64{2, 4, 10, 20}, nil),
		[]labframe.Instruction{SubtractBaseline("y", 2)})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1, 7, 17}, out.Variable("y").Values)

	_, err = labframe.Apply(signal(t, []float64{1}, nil),
		[]labframe.Instruction{SubtractBaseline("y", 5)})
	assert.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	t.Parallel()

	out, err := labframe.Apply(signal(t, []float64{0, 3, 6, 9}, nil),
		[]labframe.Instruction{MovingAverage("y", 3)})
	require.NoError(t, err)
	// Edges use the truncated window.
	assert.Equal(t, []float64{1.5, 3, 6, 7.5}, out.Variable("y").Values)

	_, err = labframe.Apply(signal(t, []float64{1, 2}, nil),
		[]labframe.Instruction{MovingAverage("y", 2)})
	assert.Error(t, err, "even window width")
}

func TestConvertUnits(t *testing.T) {
	t.Parallel()

	m := signal(t, []float64{1500, 250}, map[string]string{"units": "mV"})
	out, err := labframe.Apply(m, []labframe.Instruction{ConvertUnits("y", "V")})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0.25}, out.Variable("y").Values)
	assert.Equal(t, "V", out.Variable("y").Attrs["units"])
	assert.Equal(t, "mV", m.Variable("y").Attrs["units"], "input untouched")

	t.Run("missing units attribute", func(t *testing.T) {
		t.Parallel()
		_, err := labframe.Apply(signal(t, []float64{1}, nil),
			[]labframe.Instruction{ConvertUnits("y", "V")})
		assert.Error(t, err)
	})

	t.Run("incompatible base units", func(t *testing.T) {
		t.Parallel()
		_, err := labframe.Apply(signal(t, []float64{1}, map[string]string{"units": "mV"}),
			[]labframe.Instruction{ConvertUnits("y", "s")})
		assert.Error(t, err)
	})
}

func TestUnknownVariable(t *testing.T) {
	t.Parallel()

	_, err := labframe.Apply(signal(t, []float64{1}, nil),
		[]labframe.Instruction{Scale("nope", 2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
}
