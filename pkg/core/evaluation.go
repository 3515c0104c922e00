package core

import (
	"fmt"
	"strings"
)

// Evaluation is the derived ranking key of an individual: a single component
// when one objective is configured, or a (raw fitness, inverted crowding
// distance) pair when several are. Lower is better at every component and the
// first differing component decides. The nil slice means "not yet assigned".
type Evaluation []float64

// Assigned reports whether a ranking key has been attached.
func (e Evaluation) Assigned() bool {
	return len(e) > 0
}

// Less orders evaluations lexicographically, ascending. Comparing an
// unassigned evaluation is a programming error and panics.
func (e Evaluation) Less(other Evaluation) bool {
	e.mustBeAssigned()
	other.mustBeAssigned()

	for i := range e {
		if i >= len(other) {
			break
		}
		if e[i] < other[i] {
			return true
		}
		if e[i] > other[i] {
			return false
		}
	}
	return false
}

// Equal reports component-wise equality. Evaluations of different lengths are
// never equal.
func (e Evaluation) Equal(other Evaluation) bool {
	e.mustBeAssigned()
	other.mustBeAssigned()

	if len(e) != len(other) {
		return false
	}
	for i := range e {
		if e[i] != other[i] {
			return false
		}
	}
	return true
}

func (e Evaluation) String() string {
	parts := make([]string, len(e))
	for i, c := range e {
		parts[i] = fmt.Sprintf("%g", c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e Evaluation) mustBeAssigned() {
	if !e.Assigned() {
		panic("core: comparing an individual before fitness assignment")
	}
}
