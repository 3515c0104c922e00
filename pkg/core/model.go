package core

import "context"

// Model produces and varies fenotypes. The engine treats every fenotype as
// opaque and routes all representation-specific work through these four
// operations.
type Model interface {
	// GeneratePopulation initializes n random fenotypes.
	GeneratePopulation(ctx context.Context, n int) ([]Fenotype, error)
	// Mutate returns a new fenotype derived from the given one.
	Mutate(ctx context.Context, fenotype Fenotype) (Fenotype, error)
	// Crossover returns the offspring fenotype of the two given parents.
	Crossover(ctx context.Context, first, second Fenotype) (Fenotype, error)
	// Evaluate applies the fenotype to the inputs and returns predictions.
	Evaluate(ctx context.Context, fenotype Fenotype, inputs any) (any, error)
}

// ObjectiveFunc scores predictions against labels, returning a single float.
// Single-objective runs minimize the returned value; multi-objective runs
// maximize it, since Pareto-strength ranking assumes higher is better. The
// author of an objective function must account for this asymmetry.
type ObjectiveFunc func(labels, predictions any, args ...any) (float64, error)

// Objective binds an ObjectiveFunc to a name and its extra arguments.
type Objective struct {
	Name string
	Fn   ObjectiveFunc
	Args []any
}

// Score applies the objective with its bound extra arguments.
func (o Objective) Score(labels, predictions any) (float64, error) {
	return o.Fn(labels, predictions, o.Args...)
}
