// Package labframe loads one-dimensional lab measurement files and
// assembles them into multidimensional labeled datasets.
//
// A measurement file is a [METADATA] section of key: value lines followed
// by a [DATA] section: a tab-separated header row and whitespace-delimited
// numeric rows. LoadOne parses one such file into a Measurement whose
// single dimension is the first column. LoadMany scans a flat directory of
// such files, derives extra coordinate values per file from its filename
// via caller-supplied patterns (for example `_x[0-9]+` pulling a stage
// position out of "scan_x0100.txt"), and stacks everything into one
// Measurement with a new dimension per pattern, outer-joined on the shared
// axis with NaN for missing combinations.
//
// Processing is expressed as an ordered sequence of Instruction functions,
// each consuming and producing a Measurement. Apply runs such a sequence;
// LoadMany runs one per file between extraction and merging. The transform
// package provides stock instructions; experiment-specific ones are plain
// functions supplied by the calling script.
//
// The package is a convenience layer for analysis scripts, fully
// synchronous, with no storage or network of its own.
package labframe
