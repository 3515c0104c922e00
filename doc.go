// Package darwin is a generic evolutionary-computation engine: it evolves a
// population of opaque candidate solutions across generations using mutation,
// crossover and selection, ranking individuals by one or more objective
// functions.
//
// The engine never inspects candidate representations directly. Candidates
// ("fenotypes") are created and varied only through a user-supplied Model,
// and scored only through user-supplied objective functions, so the same
// engine drives symbolic regression trees, parameter vectors or any other
// representation.
//
// Key Components:
//
//   - Core: the Individual/Evaluation data model and the Fenotype, Model and
//     Objective contracts every experiment plugs into.
//
//   - Fitness: converts raw objective measurements into ranking keys. A single
//     objective passes through directly (minimization); several objectives are
//     ranked with SPEA2-style Pareto strength plus an inverted
//     crowding-distance tie-break (maximization).
//
//   - Selection: tournament, weighted-random and uniform sampling strategies,
//     all driven by an injectable random source for reproducible runs.
//
//   - Engine: the generation loop. Seeds the population, drives selection,
//     reproduction, memoized evaluation and elitist truncation, and tracks the
//     running champion.
//
//   - Reporting: per-generation records of every individual, with CSV and
//     SQLite sinks and experiment-name bookkeeping.
//
// A minimal run wires a Model and objectives into an engine and calls Fit:
//
//	eng, err := engine.New(engine.DefaultConfig(), model, objectives)
//	if err != nil {
//	    return err
//	}
//	champion, err := eng.Fit(ctx, xTrain, yTrain)
//
// See examples/symbolic_regression for a complete experiment.
package darwin
