// Package transform provides stock pipeline instructions for common
// measurement cleanup: scaling, normalisation, baseline subtraction,
// smoothing and unit conversion. Each constructor returns a
// labframe.Instruction operating on a copy of its input, so instructions
// compose freely and never alias earlier pipeline stages.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/labframe"
	"github.com/banshee-data/labframe/internal/units"
)

// onVariable wraps a kernel mutating one variable's values in place on a
// copy of the measurement.
func onVariable(name string, kernel func(v *labframe.Variable) error) labframe.Instruction {
	return func(m *labframe.Measurement) (*labframe.Measurement, error) {
		out := m.Copy()
		v := out.Variable(name)
		if v == nil {
			return nil, fmt.Errorf("no variable %q", name)
		}
		if err := kernel(v); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Scale multiplies a variable by a constant factor.
func Scale(name string, factor float64) labframe.Instruction {
	return onVariable(name, func(v *labframe.Variable) error {
		floats.Scale(factor, v.Values)
		return nil
	})
}

// Normalize divides a variable by its maximum absolute value, mapping it
// into [-1, 1]. NaN entries are ignored; an all-NaN or all-zero variable is
// an error.
func Normalize(name string) labframe.Instruction {
	return onVariable(name, func(v *labframe.Variable) error {
		max := 0.0
		for _, x := range v.Values {
			if a := math.Abs(x); !math.IsNaN(a) && a > max {
				max = a
			}
		}
		if max == 0 {
			return fmt.Errorf("normalize %q: no nonzero values", name)
		}
		floats.Scale(1/max, v.Values)
		return nil
	})
}

// SubtractBaseline subtracts the mean of the first n samples from a
// variable, the usual pre-trigger baseline correction.
func SubtractBaseline(name string, n int) labframe.Instruction {
	return onVariable(name, func(v *labframe.Variable) error {
		if n <= 0 || n > len(v.Values) {
			return fmt.Errorf("baseline %q: window %d outside 1..%d", name, n, len(v.Values))
		}
		mean := stat.Mean(v.Values[:n], nil)
		floats.AddConst(-mean, v.Values)
		return nil
	})
}

// MovingAverage smooths a variable with a centred window mean of odd width.
// Edges use the truncated window.
func MovingAverage(name string, width int) labframe.Instruction {
	return onVariable(name, func(v *labframe.Variable) error {
		if width < 1 || width%2 == 0 {
			return fmt.Errorf("moving average %q: width %d must be odd and positive", name, width)
		}
		half := width / 2
		smoothed := make([]float64, len(v.Values))
		for i := range v.Values {
			lo := i - half
			if lo < 0 {
				lo = 0
			}
			hi := i + half + 1
			if hi > len(v.Values) {
				hi = len(v.Values)
			}
			smoothed[i] = stat.Mean(v.Values[lo:hi], nil)
		}
		v.Values = smoothed
		return nil
	})
}

// ConvertUnits rescales a variable into another SI-prefixed variant of its
// unit, using the units attribute LoadOne parsed from the column header
// (e.g. "mV" to "V"). A variable without a units attribute is an error.
func ConvertUnits(name, to string) labframe.Instruction {
	return onVariable(name, func(v *labframe.Variable) error {
		from, ok := v.Attrs["units"]
		if !ok {
			return fmt.Errorf("convert %q: variable has no units attribute", name)
		}
		factor, err := units.Factor(from, to)
		if err != nil {
			return fmt.Errorf("convert %q: %w", name, err)
		}
		floats.Scale(factor, v.Values)
		v.Attrs["units"] = to
		return nil
	})
}
