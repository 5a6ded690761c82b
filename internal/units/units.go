// Package units parses the unit annotations lab instruments append to
// column headers and converts between SI-prefixed variants of a unit.
package units

import (
	"fmt"
	"regexp"
	"strings"
)

// headerPattern captures a trailing parenthesised unit annotation, e.g.
// "signal 1 (V)" -> quantity "signal 1", unit "V".
var headerPattern = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)

// SplitHeader splits a column header into its quantity name and unit
// annotation. ok is false when the header carries no parenthesised unit;
// the header string itself is never modified by callers that keep it as a
// variable name.
func SplitHeader(header string) (quantity, unit string, ok bool) {
	m := headerPattern.FindStringSubmatch(header)
	if m == nil || strings.TrimSpace(m[2]) == "" {
		return header, "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// prefixes maps SI prefix symbols to their scale factor.
var prefixes = map[string]float64{
	"f": 1e-15,
	"p": 1e-12,
	"n": 1e-9,
	"u": 1e-6,
	"µ": 1e-6,
	"m": 1e-3,
	"k": 1e3,
	"M": 1e6,
	"G": 1e9,
	"T": 1e12,
}

// split separates a unit symbol into SI prefix factor and base unit.
// Single-character units ("V", "s", "m") are taken as bare base units, so
// "m" is metres, not a dangling milli prefix.
func split(unit string) (factor float64, base string) {
	if len(unit) < 2 {
		return 1, unit
	}
	prefix := string([]rune(unit)[0])
	if f, ok := prefixes[prefix]; ok {
		return f, unit[len(prefix):]
	}
	return 1, unit
}

// Factor returns the multiplier that converts values in unit from to values
// in unit to. Both must share the same base unit after stripping any SI
// prefix.
func Factor(from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	ff, fb := split(from)
	tf, tb := split(to)
	if fb != tb {
		return 0, fmt.Errorf("incompatible units: %q and %q", from, to)
	}
	return ff / tf, nil
}

// Convert converts a value between SI-prefixed variants of one unit.
func Convert(value float64, from, to string) (float64, error) {
	f, err := Factor(from, to)
	if err != nil {
		return 0, err
	}
	return value * f, nil
}
