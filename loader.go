package labframe

import (
	"strconv"
	"strings"

	"github.com/banshee-data/labframe/internal/fsutil"
	"github.com/banshee-data/labframe/internal/units"
)

// Section markers of the measurement text format.
const (
	metadataMarker = "[METADATA]"
	dataMarker     = "[DATA]"
)

// LoadOne parses a single measurement file into a Measurement with one
// dimension. The file layout is a [METADATA] section of key: value lines
// followed by a [DATA] section whose first line is a tab-separated header
// row; the first column is the dimension (its header becomes the dimension
// name, its values the coordinate array) and each remaining column becomes
// a data variable named by its verbatim header string.
//
// Malformed section markers, a missing header row, or an unparseable data
// row produce a *ParseError naming the file. Metadata lines that do not
// follow the key: value convention are skipped.
func LoadOne(path string) (*Measurement, error) {
	return LoadOneFS(fsutil.OSFileSystem{}, path)
}

// LoadOneFS is LoadOne over an explicit filesystem.
func LoadOneFS(fsys fsutil.FileSystem, path string) (*Measurement, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}

	lines := splitLines(string(data))
	m := NewMeasurement()

	// Metadata section. The [METADATA] marker must be the first non-blank
	// line; everything up to [DATA] is treated as key: value pairs.
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || strings.TrimSpace(lines[i]) != metadataMarker {
		return nil, &ParseError{Path: path, Line: i + 1, Msg: "missing [METADATA] marker"}
	}
	i++
	foundData := false
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == dataMarker {
			foundData = true
			i++
			break
		}
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			Logf("labframe: %s:%d: skipping metadata line %q", path, i+1, line)
			continue
		}
		m.SetAttr(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if !foundData {
		return nil, &ParseError{Path: path, Msg: "missing [DATA] marker"}
	}

	// Header row. Tab-separated so header strings may contain spaces and
	// unit annotations; they are preserved byte-for-byte as names.
	if i >= len(lines) {
		return nil, &ParseError{Path: path, Msg: "missing header row after [DATA]"}
	}
	headers := strings.Split(lines[i], "\t")
	if len(headers) < 2 || strings.TrimSpace(headers[0]) == "" {
		return nil, &ParseError{Path: path, Line: i + 1,
			Msg: "header row needs a dimension column and at least one data column"}
	}
	i++

	// Data rows, whitespace-delimited, one value per header column.
	columns := make([][]float64, len(headers))
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		fields := strings.Fields(lines[i])
		if len(fields) != len(headers) {
			return nil, &ParseError{Path: path, Line: i + 1,
				Msg: "row has " + strconv.Itoa(len(fields)) + " values, header has " + strconv.Itoa(len(headers))}
		}
		for c, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ParseError{Path: path, Line: i + 1, Msg: "bad value " + strconv.Quote(field)}
			}
			columns[c] = append(columns[c], v)
		}
	}

	dim := headers[0]
	if err := m.AddDimension(dim, columns[0]); err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	for c := 1; c < len(headers); c++ {
		v := &Variable{Dims: []string{dim}, Values: columns[c]}
		if _, unit, ok := units.SplitHeader(headers[c]); ok {
			v.Attrs = map[string]string{"units": unit}
		}
		if err := m.AddVariable(headers[c], v); err != nil {
			return nil, &ParseError{Path: path, Msg: err.Error()}
		}
	}
	return m, nil
}

// splitLines splits file contents on newlines, tolerating CRLF endings.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
