package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header   string
		quantity string
		unit     string
		ok       bool
	}{
		{"signal 1 (V)", "signal 1", "V", true},
		{"time delay (ps)", "time delay", "ps", true},
		{"temperature(K)", "temperature", "K", true},
		{"plain", "plain", "", false},
		{"trailing space (mV) ", "trailing space", "mV", true},
		{"empty unit ()", "empty unit ()", "", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.header, func(t *testing.T) {
			t.Parallel()
			q, u, ok := SplitHeader(tc.header)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.quantity, q)
				assert.Equal(t, tc.unit, u)
			}
		})
	}
}

func TestFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		factor   float64
	}{
		{"V", "V", 1},
		{"mV", "V", 1e-3},
		{"V", "mV", 1e3},
		{"ps", "ns", 1e-3},
		{"µV", "uV", 1},
		{"MHz", "kHz", 1e3},
		{"m", "m", 1},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			t.Parallel()
			f, err := Factor(tc.from, tc.to)
			require.NoError(t, err)
			assert.InEpsilon(t, tc.factor, f, 1e-12)
		})
	}

	_, err := Factor("V", "s")
	assert.Error(t, err, "different base units")
}

func TestConvert(t *testing.T) {
	t.Parallel()

	v, err := Convert(1500, "mV", "V")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-12)

	_, err = Convert(1, "K", "V")
	assert.Error(t, err)
}
