package labframe

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"

	"github.com/banshee-data/labframe/internal/fsutil"
)

// WriteOne writes a one-dimensional Measurement back out in the measurement
// text layout LoadOne reads: a [METADATA] section with the attributes in
// sorted key order, then a [DATA] section with a tab-separated header row
// (dimension first, variables in insertion order, names verbatim) and one
// whitespace-delimited row per coordinate. Measurements with more or fewer
// than one dimension are rejected.
func WriteOne(m *Measurement, path string) error {
	return WriteOneFS(fsutil.OSFileSystem{}, m, path)
}

// WriteOneFS is WriteOne over an explicit filesystem.
func WriteOneFS(fsys fsutil.FileSystem, m *Measurement, path string) error {
	dims := m.Dimensions()
	if len(dims) != 1 {
		return fmt.Errorf("write %s: measurement has %d dimensions, need exactly 1", path, len(dims))
	}
	dim := dims[0]

	names := m.Variables()
	for _, name := range names {
		if v := m.Variable(name); len(v.Dims) != 1 || v.Dims[0] != dim {
			return fmt.Errorf("write %s: variable %q does not span dimension %q", path, name, dim)
		}
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	fmt.Fprintln(w, metadataMarker)
	keys := make([]string, 0, len(m.Attrs()))
	for k := range m.Attrs() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := m.Attr(k)
		fmt.Fprintf(w, "%s: %s\n", k, v)
	}

	fmt.Fprintln(w, dataMarker)
	fmt.Fprint(w, dim)
	for _, name := range names {
		fmt.Fprint(w, "\t", name)
	}
	fmt.Fprintln(w)

	coord := m.Coord(dim)
	for i := range coord {
		fmt.Fprint(w, strconv.FormatFloat(coord[i], 'g', -1, 64))
		for _, name := range names {
			fmt.Fprint(w, "\t", strconv.FormatFloat(m.Variable(name).Values[i], 'g', -1, 64))
		}
		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
