package labframe

import "fmt"

// ParseError reports a structurally malformed measurement file: a missing
// [METADATA] or [DATA] marker, a missing or short header row, or a data row
// that cannot be parsed. Individual bad metadata lines are skipped and do
// not raise it.
type ParseError struct {
	Path string
	Line int // 1-based line number, 0 when not line-specific
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Msg)
}

// EmptyDirectoryError reports that a directory scan matched no measurement
// files.
type EmptyDirectoryError struct {
	Dir     string
	Pattern string
}

func (e *EmptyDirectoryError) Error() string {
	return fmt.Sprintf("no files matching %q in %s", e.Pattern, e.Dir)
}

// CoordinateExtractionError reports that a filename-coordinate rule did not
// yield a numeric value for a file: either the pattern matched nothing or
// the match contained no number.
type CoordinateExtractionError struct {
	Path    string
	Coord   string
	Pattern string
	Reason  string
}

func (e *CoordinateExtractionError) Error() string {
	return fmt.Sprintf("extract coordinate %q from %s: pattern %q: %s",
		e.Coord, e.Path, e.Pattern, e.Reason)
}

// DuplicateCoordinateError reports that two files produced an identical set
// of extracted coordinate values, which makes the assembly ambiguous. No
// partial merge is performed.
type DuplicateCoordinateError struct {
	Path  string // the file that collided
	Other string // the file it collided with
	Key   string // the shared coordinate tuple, rendered for the message
}

func (e *DuplicateCoordinateError) Error() string {
	return fmt.Sprintf("duplicate coordinates %s: %s collides with %s", e.Key, e.Path, e.Other)
}

// DimensionMismatchError reports an array whose shape disagrees with the
// dimension it is being attached or merged along.
type DimensionMismatchError struct {
	Dim    string
	Want   int
	Got    int
	Detail string // set instead of Want/Got for non-length mismatches
}

func (e *DimensionMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("dimension mismatch on %s: %s", e.Dim, e.Detail)
	}
	return fmt.Sprintf("dimension mismatch on %s: want length %d, got %d", e.Dim, e.Want, e.Got)
}

// PipelineError wraps a failure from one transformation function in an
// instruction sequence, identifying the zero-based index of the function
// that failed. The original cause is available through Unwrap.
type PipelineError struct {
	Index int
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline instruction %d: %v", e.Index, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
