// Package engine orchestrates the evolutionary loop: it seeds a population,
// drives selection, reproduction, memoized evaluation and elitist truncation
// across generations, and tracks the running champion.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/darwinml/darwin-go/pkg/core"
	"github.com/darwinml/darwin-go/pkg/errors"
	"github.com/darwinml/darwin-go/pkg/fitness"
	"github.com/darwinml/darwin-go/pkg/logging"
	"github.com/darwinml/darwin-go/pkg/reporting"
	"github.com/darwinml/darwin-go/pkg/selection"
)

// Engine runs the evolutionary loop against a user-supplied Model and
// objective functions. It is not safe for concurrent use; each generation
// strictly depends on the fully ranked previous one.
type Engine struct {
	config     *Config
	model      core.Model
	objectives []core.Objective
	assignment fitness.Assignment
	strategy   selection.Strategy
	reporter   reporting.Reporter
	logger     *logging.Logger
	rng        *rand.Rand

	// Derived once at construction and held constant for the whole run.
	mutations  int
	crossovers int

	population     core.Population
	champion       core.Fenotype
	ranGenerations int

	xTrain any
	yTrain any
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithRand injects the random source shared by all selection strategies.
// Inject a seeded source for reproducible runs; the default is time-seeded.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithReporter attaches a sink receiving per-generation records.
func WithReporter(r reporting.Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithLogger overrides the global logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New validates the configuration and assembles an engine. A nil config uses
// DefaultConfig.
func New(config *Config, model core.Model, objectives []core.Objective, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, errors.New(errors.InvalidConfiguration, "a model is required")
	}
	if len(objectives) == 0 {
		return nil, errors.New(errors.InvalidConfiguration, "at least one objective function is required")
	}

	e := &Engine{
		config:     config,
		model:      model,
		objectives: objectives,
		assignment: fitness.ForObjectives(len(objectives)),
		mutations:  config.mutationCount(),
		crossovers: config.crossoverCount(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = logging.GetLogger()
	}

	strategy, err := selection.New(config.Selection, config.TournamentSize, e.rng)
	if err != nil {
		return nil, err
	}
	e.strategy = strategy

	return e, nil
}

// Fit runs the full evolutionary loop and returns the champion fenotype.
// Evaluation failures abort the run; no generation is skipped or retried.
func (e *Engine) Fit(ctx context.Context, xTrain, yTrain any) (core.Fenotype, error) {
	e.xTrain = xTrain
	e.yTrain = yTrain
	e.champion = nil
	e.ranGenerations = 0

	e.logger.Info(ctx, "Starting run: population_size=%d, generations=%d, mutations_per_gen=%d, crossovers_per_gen=%d",
		e.config.PopulationSize, e.config.Generations, e.mutations, e.crossovers)

	fenotypes, err := e.model.GeneratePopulation(ctx, e.config.PopulationSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.EvaluationFailed, "generating initial population")
	}
	if len(fenotypes) != e.config.PopulationSize {
		return nil, errors.WithFields(
			errors.New(errors.EvaluationFailed, "model produced wrong initial population size"),
			errors.Fields{"want": e.config.PopulationSize, "got": len(fenotypes)})
	}

	e.population = make(core.Population, 0, e.config.PopulationSize+e.mutations+e.crossovers)
	for _, fenotype := range fenotypes {
		e.population = append(e.population, core.NewIndividual(fenotype))
	}

	initCtx := logging.WithGeneration(ctx, 0)
	if err := e.evaluateAndRank(initCtx); err != nil {
		return nil, err
	}
	if err := e.checkpoint(initCtx, 0); err != nil {
		return nil, err
	}
	e.logger.Info(initCtx, "Initial population evaluated: champion_evaluation=%v",
		e.population[0].Evaluation())

	for generation := 1; generation < e.config.Generations; generation++ {
		if err := errors.CheckContext(ctx, "generation"); err != nil {
			return nil, err
		}
		e.ranGenerations = generation
		genCtx := logging.WithGeneration(ctx, generation)
		start := time.Now()

		if err := e.reproduce(genCtx); err != nil {
			return nil, err
		}
		if err := e.evaluateAndRank(genCtx); err != nil {
			return nil, err
		}
		// Strict elitism: exactly the best population_size individuals
		// survive; the rest are discarded and never touched again.
		e.population = e.population[:e.config.PopulationSize]

		if err := e.checkpoint(genCtx, generation); err != nil {
			return nil, err
		}

		e.logger.Info(genCtx, "Generation complete: elapsed=%s, champion_evaluation=%v",
			time.Since(start).Round(time.Millisecond), e.population[0].Evaluation())
		e.logger.Debug(genCtx, "Champion fenotype: %s", e.population[0].Fenotype)
	}

	e.champion = e.population[0].Fenotype
	return e.champion, nil
}

// Predict applies the champion fenotype to the inputs.
func (e *Engine) Predict(ctx context.Context, x any) (any, error) {
	if e.champion == nil {
		return nil, errors.New(errors.NotFitted, "fit must complete before predict")
	}
	predictions, err := e.model.Evaluate(ctx, e.champion, x)
	if err != nil {
		return nil, errors.Wrap(err, errors.EvaluationFailed, "evaluating champion")
	}
	return predictions, nil
}

// Champion returns the winning fenotype of the last completed run, or nil.
func (e *Engine) Champion() core.Fenotype {
	return e.champion
}

// Population returns a snapshot of the current population in rank order.
func (e *Engine) Population() core.Population {
	snapshot := make(core.Population, len(e.population))
	copy(snapshot, e.population)
	return snapshot
}

// RanGenerations returns the counter of the last executed generation.
func (e *Engine) RanGenerations() int {
	return e.ranGenerations
}

// reproduce draws parents with the configured strategy and appends offspring;
// the population temporarily grows by mutations + crossovers entries.
func (e *Engine) reproduce(ctx context.Context) error {
	firstParents := e.strategy.Select(e.population, e.crossovers)
	secondParents := e.strategy.Select(e.population, e.crossovers)
	mutationParents := e.strategy.Select(e.population, e.mutations)

	for _, parent := range mutationParents {
		child, err := e.model.Mutate(ctx, parent.Fenotype)
		if err != nil {
			return errors.Wrap(err, errors.EvaluationFailed, "mutating parent")
		}
		e.population = append(e.population, core.NewIndividual(child))
	}
	for i := range firstParents {
		child, err := e.model.Crossover(ctx, firstParents[i].Fenotype, secondParents[i].Fenotype)
		if err != nil {
			return errors.Wrap(err, errors.EvaluationFailed, "crossing parents")
		}
		e.population = append(e.population, core.NewIndividual(child))
	}
	return nil
}

// evaluateAndRank scores pending individuals, recomputes ranking keys for the
// entire current population and sorts it ascending (stable).
func (e *Engine) evaluateAndRank(ctx context.Context) error {
	if err := e.scorePending(ctx); err != nil {
		return err
	}
	if err := e.assignment.Assign(e.population); err != nil {
		return err
	}
	e.population.Sort()
	return nil
}

// scorePending computes objective values only for individuals that have none
// yet. Survivors keep their memoized measurements and are never re-evaluated,
// since a fenotype is immutable once created.
func (e *Engine) scorePending(ctx context.Context) error {
	pending := make([]*core.Individual, 0, len(e.population))
	for _, ind := range e.population {
		if !ind.Scored() {
			pending = append(pending, ind)
		}
	}

	if e.config.Concurrency > 1 {
		// Each task writes only its own individual, so the merge is
		// deterministic regardless of completion order.
		p := pool.New().WithErrors().WithMaxGoroutines(e.config.Concurrency)
		for _, ind := range pending {
			ind := ind
			p.Go(func() error {
				return e.score(ctx, ind)
			})
		}
		return p.Wait()
	}

	for _, ind := range pending {
		if err := e.score(ctx, ind); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) score(ctx context.Context, ind *core.Individual) error {
	predictions, err := e.model.Evaluate(ctx, ind.Fenotype, e.xTrain)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.EvaluationFailed, "evaluating fenotype"),
			errors.Fields{"fenotype": ind.Fenotype.String()})
	}

	values := make([]float64, len(e.objectives))
	for i, objective := range e.objectives {
		score, err := objective.Score(e.yTrain, predictions)
		if err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.EvaluationFailed, "scoring objective"),
				errors.Fields{"objective": objective.Name})
		}
		values[i] = score
	}
	ind.SetObjectiveValues(values)
	return nil
}

// checkpoint hands the ranked population to the reporter, one record per
// individual.
func (e *Engine) checkpoint(ctx context.Context, generation int) error {
	if e.reporter == nil {
		return nil
	}

	records := make([]reporting.Record, len(e.population))
	for i, ind := range e.population {
		records[i] = reporting.Record{
			Generation: generation,
			Index:      i,
			Fenotype:   ind.Fenotype.String(),
			Depth:      ind.Fenotype.Depth(),
			Size:       ind.Fenotype.Size(),
			Evaluation: ind.Evaluation(),
		}
	}
	if err := e.reporter.ReportGeneration(ctx, records); err != nil {
		return errors.Wrap(err, errors.ReportingFailed, "reporting generation")
	}
	return nil
}
