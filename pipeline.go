package labframe

import "fmt"

// Instruction is one step of a transformation pipeline: a pure function
// consuming one Measurement and producing another, possibly with a
// different shape or variable set. Instructions must not retain or mutate
// their input; they own only the Measurement they return.
type Instruction func(*Measurement) (*Measurement, error)

// Apply runs an ordered instruction sequence left-to-right: each
// instruction's output becomes the next one's input. An empty sequence
// returns m unchanged. A failing instruction aborts the run with a
// *PipelineError identifying its zero-based index and wrapping the cause;
// no instruction is skipped, reordered, or retried, since later
// instructions may depend on variables or dimensions introduced by earlier
// ones.
func Apply(m *Measurement, instructions []Instruction) (*Measurement, error) {
	for i, instr := range instructions {
		if instr == nil {
			return nil, &PipelineError{Index: i, Err: fmt.Errorf("nil instruction")}
		}
		next, err := instr(m)
		if err != nil {
			return nil, &PipelineError{Index: i, Err: err}
		}
		if next == nil {
			return nil, &PipelineError{Index: i, Err: fmt.Errorf("instruction returned nil measurement")}
		}
		m = next
	}
	return m, nil
}
