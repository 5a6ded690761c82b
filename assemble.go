package labframe

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/labframe/internal/fsutil"
)

// DefaultPattern is the glob measurement files are matched against when no
// WithPattern option is given.
const DefaultPattern = "*.txt"

// numberPattern finds the numeric value inside a matched filename fragment,
// e.g. "_x0100" -> 0100.
var numberPattern = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?`)

// Option configures LoadMany.
type Option func(*assembleOptions)

type assembleOptions struct {
	instructions []Instruction
	pattern      string
	fsys         fsutil.FileSystem
	stamp        bool
}

// WithInstructions sets the pipeline applied to each per-file Measurement
// after coordinate extraction and before merging.
func WithInstructions(instructions ...Instruction) Option {
	return func(o *assembleOptions) { o.instructions = instructions }
}

// WithPattern sets the filename glob measurement files must match.
func WithPattern(glob string) Option {
	return func(o *assembleOptions) { o.pattern = glob }
}

// WithFileSystem sets the filesystem to scan. Defaults to the OS filesystem.
func WithFileSystem(fsys fsutil.FileSystem) Option {
	return func(o *assembleOptions) { o.fsys = fsys }
}

// WithStamp controls whether the assembled Measurement is stamped with
// assembly_id and source_files provenance attributes. On by default.
func WithStamp(stamp bool) Option {
	return func(o *assembleOptions) { o.stamp = stamp }
}

// compiledRule is one filename-coordinate extraction rule. Rules carry no
// shared state; each is evaluated independently per file.
type compiledRule struct {
	name    string
	pattern string
	re      *regexp.Regexp
}

// fileResult holds one loaded, extracted, pipelined per-file Measurement
// awaiting merge.
type fileResult struct {
	path      string
	extracted []float64 // one value per rule, in rule order
	m         *Measurement
}

// LoadMany scans a directory (non-recursive), loads every matching
// measurement file with LoadOne, extracts one new coordinate per rule from
// each filename, applies the per-file instruction pipeline, and merges the
// results into one Measurement whose dimensions are the shared per-file
// dimension plus one new dimension per rule.
//
// rules maps new coordinate names to regular expressions searched against
// each base filename; the numeric run inside the match (or capture group 1
// when the pattern defines one) becomes that file's coordinate value.
//
// Files are processed in lexicographic filename order. Merging outer-joins
// on the shared dimension's coordinate labels, filling absent combinations
// with NaN, and the assembled Measurement is sorted ascending along every
// new dimension. Any per-file failure aborts the whole assembly with the
// offending file path in the error; two files extracting an identical
// coordinate tuple abort with a *DuplicateCoordinateError.
func LoadMany(dir string, rules map[string]string, opts ...Option) (*Measurement, error) {
	o := assembleOptions{pattern: DefaultPattern, fsys: fsutil.OSFileSystem{}, stamp: true}
	for _, opt := range opts {
		opt(&o)
	}

	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	paths, err := scanDir(o.fsys, dir, o.pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string) // coordinate tuple -> first path
	results := make([]fileResult, 0, len(paths))
	for _, path := range paths {
		m, err := LoadOneFS(o.fsys, path)
		if err != nil {
			return nil, err
		}

		extracted := make([]float64, len(compiled))
		for i, rule := range compiled {
			v, err := rule.extract(path)
			if err != nil {
				return nil, err
			}
			extracted[i] = v
		}

		key := coordKey(extracted)
		if other, dup := seen[key]; dup {
			return nil, &DuplicateCoordinateError{Path: path, Other: other, Key: key}
		}
		seen[key] = path

		// Promote each scalar to a singleton dimension, leading axes in
		// rule order, before the pipeline sees the measurement.
		for i := len(compiled) - 1; i >= 0; i-- {
			if err := m.ExpandDims(compiled[i].name, extracted[i]); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}

		m, err = Apply(m, o.instructions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		results = append(results, fileResult{path: path, extracted: extracted, m: m})
	}

	Logf("labframe: assembling %d files from %s", len(results), dir)
	assembled, err := merge(compiled, results)
	if err != nil {
		return nil, err
	}
	if o.stamp {
		assembled.SetAttr("assembly_id", uuid.NewString())
		assembled.SetAttr("source_files", strconv.Itoa(len(results)))
	}
	return assembled, nil
}

// compileRules compiles extraction rules and fixes their order by name so
// assembled dimension order is independent of map iteration.
func compileRules(rules map[string]string) ([]compiledRule, error) {
	names := make([]string, 0, len(rules))
	for name := range rules {
		if name == "" {
			return nil, fmt.Errorf("extraction rule with empty coordinate name")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	compiled := make([]compiledRule, 0, len(names))
	for _, name := range names {
		re, err := regexp.Compile(rules[name])
		if err != nil {
			return nil, fmt.Errorf("extraction rule %q: %w", name, err)
		}
		compiled = append(compiled, compiledRule{name: name, pattern: rules[name], re: re})
	}
	return compiled, nil
}

// extract applies the rule to a file's base name and parses the numeric
// coordinate value out of the match.
func (r compiledRule) extract(path string) (float64, error) {
	base := filepath.Base(path)
	match := r.re.FindStringSubmatch(base)
	if match == nil {
		return 0, &CoordinateExtractionError{Path: path, Coord: r.name, Pattern: r.pattern, Reason: "no match in filename"}
	}
	text := match[0]
	if len(match) > 1 && match[1] != "" {
		text = match[1]
	}
	num := numberPattern.FindString(text)
	if num == "" {
		return 0, &CoordinateExtractionError{Path: path, Coord: r.name, Pattern: r.pattern, Reason: "match " + strconv.Quote(text) + " is not numeric"}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, &CoordinateExtractionError{Path: path, Coord: r.name, Pattern: r.pattern, Reason: "match " + strconv.Quote(text) + " is not numeric"}
	}
	return v, nil
}

// scanDir lists the matching files of one directory in lexicographic order.
func scanDir(fsys fsutil.FileSystem, dir, pattern string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("scan %s: bad pattern %q: %w", dir, pattern, err)
		}
		if ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, &EmptyDirectoryError{Dir: dir, Pattern: pattern}
	}
	sort.Strings(paths)
	return paths, nil
}

// coordKey renders an extracted coordinate tuple as the assembly merge key.
func coordKey(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// merge stacks the per-file Measurements along the rule dimensions,
// outer-joining on the shared dimension's coordinate labels. Positions no
// file contributes stay NaN.
func merge(rules []compiledRule, results []fileResult) (*Measurement, error) {
	if len(results) == 1 && len(rules) == 0 {
		return results[0].m, nil
	}

	ruleDims := make(map[string]bool, len(rules))
	for _, r := range rules {
		ruleDims[r.name] = true
	}

	// Every file must expose exactly one non-rule dimension, with the same
	// name everywhere; that is the shared axis the outer join aligns on.
	shared := ""
	for _, res := range results {
		var rest []string
		for _, d := range res.m.Dimensions() {
			if !ruleDims[d] {
				rest = append(rest, d)
			}
		}
		if len(rest) != 1 {
			return nil, &DimensionMismatchError{Dim: strings.Join(rest, ","),
				Detail: fmt.Sprintf("%s: expected one shared dimension after pipeline, got %d", res.path, len(rest))}
		}
		if shared == "" {
			shared = rest[0]
		} else if rest[0] != shared {
			return nil, &DimensionMismatchError{Dim: rest[0],
				Detail: fmt.Sprintf("%s: shared dimension differs from %q", res.path, shared)}
		}
	}

	// The first file fixes the variable set; later files must agree, and
	// every variable must be internally consistent with its file's shared
	// coordinate length.
	varNames := results[0].m.Variables()
	spansShared := make(map[string]bool, len(varNames))
	for _, name := range varNames {
		spansShared[name] = spans(results[0].m.Variable(name), shared)
	}
	for _, res := range results {
		if err := checkVariables(res, varNames, spansShared, shared); err != nil {
			return nil, err
		}
	}

	// Rule axes: sorted unique extracted values per rule.
	axes := make([][]float64, len(rules))
	axisIndex := make([]map[float64]int, len(rules))
	for i := range rules {
		uniq := make(map[float64]bool)
		for _, res := range results {
			uniq[res.extracted[i]] = true
		}
		axes[i] = sortedKeys(uniq)
		axisIndex[i] = indexOf(axes[i])
	}

	// Shared axis: sorted union of every file's coordinate labels.
	uniq := make(map[float64]bool)
	for _, res := range results {
		for _, c := range res.m.Coord(shared) {
			uniq[c] = true
		}
	}
	union := sortedKeys(uniq)
	unionIndex := indexOf(union)

	out := NewMeasurement()
	for i, r := range rules {
		if err := out.AddDimension(r.name, axes[i]); err != nil {
			return nil, err
		}
	}
	if err := out.AddDimension(shared, union); err != nil {
		return nil, err
	}

	// cells is the flattened size of the rule-axis grid.
	cells := 1
	for _, axis := range axes {
		cells *= len(axis)
	}

	for _, name := range varNames {
		n := cells
		dims := make([]string, 0, len(rules)+1)
		for _, r := range rules {
			dims = append(dims, r.name)
		}
		if spansShared[name] {
			n *= len(union)
			dims = append(dims, shared)
		}
		values := make([]float64, n)
		for i := range values {
			values[i] = Missing()
		}

		for _, res := range results {
			cell := 0
			for i := range rules {
				cell = cell*len(axes[i]) + axisIndex[i][res.extracted[i]]
			}
			src := res.m.Variable(name)
			if !spansShared[name] {
				values[cell] = src.Values[0]
				continue
			}
			for j, c := range res.m.Coord(shared) {
				values[cell*len(union)+unionIndex[c]] = src.Values[j]
			}
		}

		v := &Variable{Dims: dims, Values: values}
		if src := results[0].m.Variable(name); src.Attrs != nil {
			v.Attrs = make(map[string]string, len(src.Attrs))
			for k, a := range src.Attrs {
				v.Attrs[k] = a
			}
		}
		if err := out.AddVariable(name, v); err != nil {
			return nil, err
		}
	}

	// Keep only metadata every file agrees on.
	for k, v := range results[0].m.Attrs() {
		agreed := true
		for _, res := range results[1:] {
			if other, ok := res.m.Attr(k); !ok || other != v {
				agreed = false
				break
			}
		}
		if agreed {
			out.SetAttr(k, v)
		}
	}
	return out, nil
}

// spans reports whether a variable has dim among its axes.
func spans(v *Variable, dim string) bool {
	for _, d := range v.Dims {
		if d == dim {
			return true
		}
	}
	return false
}

// checkVariables verifies one file's variables against the set and shapes
// the first file established.
func checkVariables(res fileResult, varNames []string, spansShared map[string]bool, shared string) error {
	if got := res.m.Variables(); len(got) != len(varNames) {
		return &DimensionMismatchError{Dim: shared,
			Detail: fmt.Sprintf("%s: has %d variables, first file has %d", res.path, len(got), len(varNames))}
	}
	sharedLen := res.m.Size(shared)
	for _, name := range varNames {
		v := res.m.Variable(name)
		if v == nil {
			return &DimensionMismatchError{Dim: shared,
				Detail: fmt.Sprintf("%s: missing variable %q", res.path, name)}
		}
		if spans(v, shared) != spansShared[name] {
			return &DimensionMismatchError{Dim: shared,
				Detail: fmt.Sprintf("%s: variable %q shape disagrees with first file", res.path, name)}
		}
		want := 1
		if spansShared[name] {
			want = sharedLen
		}
		if len(v.Values) != want {
			return &DimensionMismatchError{Dim: shared, Want: want, Got: len(v.Values),
				Detail: fmt.Sprintf("%s: variable %q has %d values for %d coordinates", res.path, name, len(v.Values), want)}
		}
	}
	return nil
}

func sortedKeys(set map[float64]bool) []float64 {
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func indexOf(values []float64) map[float64]int {
	idx := make(map[float64]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
