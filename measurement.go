package labframe

import (
	"fmt"
	"math"
	"sort"
)

// Measurement is a labeled multidimensional dataset: a set of named
// dimensions, a coordinate array per dimension (plus optional auxiliary
// coordinates aligned to a dimension), named data variables spanning those
// dimensions, and free-form string attributes carrying file metadata.
//
// A Measurement is created by LoadOne with a single dimension, grows extra
// singleton dimensions during assembly, and is handed to pipeline
// instructions which may reshape it freely. Missing values are represented
// as NaN.
type Measurement struct {
	dims     []string // dimension order, stable across operations
	sizes    map[string]int
	coords   map[string]coordinate
	vars     map[string]*Variable
	varOrder []string // insertion order, preserved for writing
	attrs    map[string]string
}

// coordinate is a labeled array aligned to one dimension. Dimension
// coordinates have name == dim; auxiliary coordinates attach extra labels
// to an existing dimension.
type coordinate struct {
	dim    string
	values []float64
}

// Variable is a named data array spanning one or more dimensions of its
// Measurement, stored row-major over Dims.
type Variable struct {
	Dims   []string
	Values []float64
	Attrs  map[string]string
}

// NewMeasurement returns an empty Measurement with no dimensions,
// variables or attributes.
func NewMeasurement() *Measurement {
	return &Measurement{
		sizes:  make(map[string]int),
		coords: make(map[string]coordinate),
		vars:   make(map[string]*Variable),
		attrs:  make(map[string]string),
	}
}

// AddDimension adds a new dimension with its coordinate array. The
// dimension's size is the coordinate length.
func (m *Measurement) AddDimension(name string, coord []float64) error {
	if name == "" {
		return fmt.Errorf("dimension name must not be empty")
	}
	if _, ok := m.sizes[name]; ok {
		return fmt.Errorf("dimension %q already exists", name)
	}
	m.dims = append(m.dims, name)
	m.sizes[name] = len(coord)
	m.coords[name] = coordinate{dim: name, values: append([]float64(nil), coord...)}
	return nil
}

// Dimensions returns the dimension names in order.
func (m *Measurement) Dimensions() []string {
	return append([]string(nil), m.dims...)
}

// HasDimension reports whether the named dimension exists.
func (m *Measurement) HasDimension(name string) bool {
	_, ok := m.sizes[name]
	return ok
}

// Size returns the length of the named dimension, or 0 if it does not exist.
func (m *Measurement) Size(dim string) int {
	return m.sizes[dim]
}

// Coord returns the coordinate array registered under name, or nil if none.
// The returned slice is the live backing array; callers that mutate it own
// the Measurement.
func (m *Measurement) Coord(name string) []float64 {
	return m.coords[name].values
}

// CoordDim returns the dimension a coordinate is aligned to, or "" if the
// coordinate does not exist.
func (m *Measurement) CoordDim(name string) string {
	return m.coords[name].dim
}

// Coords returns all coordinate names, dimension coordinates first in
// dimension order, auxiliary coordinates after in sorted order.
func (m *Measurement) Coords() []string {
	names := append([]string(nil), m.dims...)
	var aux []string
	for name := range m.coords {
		if name != m.coords[name].dim {
			aux = append(aux, name)
		}
	}
	sort.Strings(aux)
	return append(names, aux...)
}

// DefineCoordinate attaches a precomputed array as an auxiliary coordinate
// aligned to an existing dimension. The values are not interpreted; callers
// evaluate any derived expression before invoking this. A length mismatch
// against the target dimension yields a *DimensionMismatchError.
func (m *Measurement) DefineCoordinate(name, dim string, values []float64) error {
	if !m.HasDimension(dim) {
		return &DimensionMismatchError{Dim: dim, Detail: "dimension does not exist"}
	}
	if len(values) != m.sizes[dim] {
		return &DimensionMismatchError{Dim: dim, Want: m.sizes[dim], Got: len(values)}
	}
	m.coords[name] = coordinate{dim: dim, values: append([]float64(nil), values...)}
	return nil
}

// AddVariable attaches a data variable. Every dimension the variable spans
// must already exist, and the value count must equal the product of the
// spanned dimension sizes; otherwise a *DimensionMismatchError is returned.
func (m *Measurement) AddVariable(name string, v *Variable) error {
	if name == "" {
		return fmt.Errorf("variable name must not be empty")
	}
	want := 1
	for _, d := range v.Dims {
		n, ok := m.sizes[d]
		if !ok {
			return &DimensionMismatchError{Dim: d, Detail: fmt.Sprintf("variable %q spans unknown dimension", name)}
		}
		want *= n
	}
	if len(v.Values) != want {
		return &DimensionMismatchError{Dim: fmt.Sprintf("variable %q", name), Want: want, Got: len(v.Values)}
	}
	if _, ok := m.vars[name]; !ok {
		m.varOrder = append(m.varOrder, name)
	}
	m.vars[name] = v
	return nil
}

// Variable returns the named data variable, or nil if it does not exist.
// The returned pointer aliases the Measurement's storage.
func (m *Measurement) Variable(name string) *Variable {
	return m.vars[name]
}

// Variables returns the data variable names in insertion order.
func (m *Measurement) Variables() []string {
	return append([]string(nil), m.varOrder...)
}

// SetAttr sets a metadata attribute on the Measurement.
func (m *Measurement) SetAttr(key, value string) {
	m.attrs[key] = value
}

// Attr returns a metadata attribute and whether it is present.
func (m *Measurement) Attr(key string) (string, bool) {
	v, ok := m.attrs[key]
	return v, ok
}

// Attrs returns a copy of the metadata attribute map.
func (m *Measurement) Attrs() map[string]string {
	out := make(map[string]string, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// ExpandDims prepends a new singleton dimension with the given scalar
// coordinate value. Every existing variable gains the dimension as its
// leading axis without any data movement. This is how a per-file scalar
// extracted from a filename becomes a shared axis during assembly.
func (m *Measurement) ExpandDims(name string, value float64) error {
	if m.HasDimension(name) {
		return fmt.Errorf("dimension %q already exists", name)
	}
	m.dims = append([]string{name}, m.dims...)
	m.sizes[name] = 1
	m.coords[name] = coordinate{dim: name, values: []float64{value}}
	for _, v := range m.vars {
		v.Dims = append([]string{name}, v.Dims...)
	}
	return nil
}

// Copy returns a deep copy sharing no storage with the receiver.
func (m *Measurement) Copy() *Measurement {
	out := NewMeasurement()
	out.dims = append([]string(nil), m.dims...)
	out.varOrder = append([]string(nil), m.varOrder...)
	for k, v := range m.sizes {
		out.sizes[k] = v
	}
	for k, c := range m.coords {
		out.coords[k] = coordinate{dim: c.dim, values: append([]float64(nil), c.values...)}
	}
	for k, v := range m.vars {
		nv := &Variable{
			Dims:   append([]string(nil), v.Dims...),
			Values: append([]float64(nil), v.Values...),
		}
		if v.Attrs != nil {
			nv.Attrs = make(map[string]string, len(v.Attrs))
			for ak, av := range v.Attrs {
				nv.Attrs[ak] = av
			}
		}
		out.vars[k] = nv
	}
	for k, v := range m.attrs {
		out.attrs[k] = v
	}
	return out
}

// Missing is the sentinel used for absent values after an outer-join
// assembly.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }
