package core

import (
	"fmt"
	"sort"
)

// Fenotype is an opaque candidate-solution representation. The engine never
// inspects it beyond these structural accessors, which only feed reporting;
// creation and variation happen exclusively through a Model.
type Fenotype interface {
	fmt.Stringer
	// Depth returns the structural depth of the representation.
	Depth() int
	// Size returns the node/element count of the representation.
	Size() int
}

// Individual pairs a fenotype with its cached objective measurements and the
// ranking key derived from them.
type Individual struct {
	Fenotype Fenotype

	// objectiveValues holds one score per configured objective. Set at most
	// once: a fenotype is immutable after creation, so its measurements are
	// too.
	objectiveValues []float64

	// evaluation is population-relative and reassigned on every fitness pass.
	evaluation Evaluation
}

// NewIndividual wraps a fenotype with objective values and evaluation unset.
func NewIndividual(fenotype Fenotype) *Individual {
	return &Individual{Fenotype: fenotype}
}

// Scored reports whether objective values have been attached.
func (ind *Individual) Scored() bool {
	return ind.objectiveValues != nil
}

// ObjectiveValues returns the memoized per-objective measurements, or nil
// when the individual has not been scored yet.
func (ind *Individual) ObjectiveValues() []float64 {
	return ind.objectiveValues
}

// SetObjectiveValues memoizes the measurements. Writing twice panics: the
// fenotype never changes after creation, so a second write means survivors
// are being re-evaluated.
func (ind *Individual) SetObjectiveValues(values []float64) {
	if ind.objectiveValues != nil {
		panic("core: objective values already set for this individual")
	}
	ind.objectiveValues = values
}

// Evaluation returns the current ranking key.
func (ind *Individual) Evaluation() Evaluation {
	return ind.evaluation
}

// SetEvaluation attaches a ranking key. Unlike objective values this is
// overwritten on every fitness pass, since ranks are relative to the whole
// current population.
func (ind *Individual) SetEvaluation(e Evaluation) {
	ind.evaluation = e
}

// Less orders individuals ascending by evaluation; index 0 after sorting is
// the champion. Panics when either side has no evaluation yet.
func (ind *Individual) Less(other *Individual) bool {
	return ind.evaluation.Less(other.evaluation)
}

func (ind *Individual) String() string {
	return fmt.Sprintf("Fenotype: %v Evaluations: %v", ind.Fenotype, ind.evaluation)
}

// Population is an ordered sequence of individuals. It holds exactly the
// configured population size at generation boundaries and temporarily grows
// during reproduction.
type Population []*Individual

// Sort orders the population ascending by evaluation. The sort is stable so
// equal evaluations keep their prior relative order.
func (p Population) Sort() {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Less(p[j])
	})
}

// Champion returns the best-ranked individual. The population must be sorted.
func (p Population) Champion() *Individual {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}
