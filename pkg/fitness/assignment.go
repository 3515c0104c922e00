// Package fitness converts raw per-objective measurements into the ranking
// keys the engine sorts and truncates by.
package fitness

import (
	"github.com/darwinml/darwin-go/pkg/core"
)

// Assignment computes a ranking key for every individual in the population.
// Keys are population-relative: they must be recomputed from scratch for the
// entire merged population (elites included) whenever its composition
// changes. Every individual must already carry objective values.
type Assignment interface {
	Assign(population core.Population) error
}

// ForObjectives returns the assignment matching the configured objective
// count: direct pass-through for one objective, SPEA2 strength ranking with a
// crowding-distance tie-break for several.
func ForObjectives(n int) Assignment {
	if n == 1 {
		return SingleObjective{}
	}
	return SPEA2{}
}

// SingleObjective ranks directly by the only objective value. Lower is
// better (minimization convention).
type SingleObjective struct{}

func (SingleObjective) Assign(population core.Population) error {
	for _, ind := range population {
		ind.SetEvaluation(core.Evaluation{ind.ObjectiveValues()[0]})
	}
	return nil
}
