package engine

import (
	"math"

	"github.com/darwinml/darwin-go/pkg/errors"
	"github.com/darwinml/darwin-go/pkg/selection"
)

// Config contains the evolutionary parameters of a run.
type Config struct {
	PopulationSize int `json:"population_size" yaml:"population_size" validate:"required,min=1"`
	Generations    int `json:"generations" yaml:"generations" validate:"required,min=1"`

	// MutationRatio is the share of each generation's offspring produced by
	// mutation; the rest come from crossover.
	MutationRatio float64 `json:"mutation_ratio" yaml:"mutation_ratio" validate:"min=0,max=1"`

	// Selection is one of "tournament", "weighted_random" or "uniform".
	Selection      string `json:"selection" yaml:"selection" validate:"oneof=tournament weighted_random uniform"`
	TournamentSize int    `json:"tournament_size" yaml:"tournament_size" validate:"min=1"`

	// Concurrency bounds parallel objective evaluation. Values <= 1 evaluate
	// sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency" validate:"min=0"`
}

// DefaultConfig returns the default run parameters.
func DefaultConfig() *Config {
	return &Config{
		PopulationSize: 20,
		Generations:    10,
		MutationRatio:  0.4,
		Selection:      selection.StrategyTournament,
		TournamentSize: 2,
		Concurrency:    1,
	}
}

// Validate checks the configuration at construction time.
func (c *Config) Validate() error {
	if c.PopulationSize < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidConfiguration, "population size must be at least 1"),
			errors.Fields{"population_size": c.PopulationSize})
	}
	if c.Generations < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidConfiguration, "generations must be at least 1"),
			errors.Fields{"generations": c.Generations})
	}
	if c.MutationRatio < 0 || c.MutationRatio > 1 {
		return errors.WithFields(
			errors.New(errors.InvalidConfiguration, "mutation ratio must be in [0, 1]"),
			errors.Fields{"mutation_ratio": c.MutationRatio})
	}
	if c.TournamentSize < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidConfiguration, "tournament size must be at least 1"),
			errors.Fields{"tournament_size": c.TournamentSize})
	}
	switch c.Selection {
	case selection.StrategyTournament, selection.StrategyWeightedRandom, selection.StrategyUniform:
	default:
		return errors.WithFields(
			errors.New(errors.InvalidConfiguration, "unknown selection strategy"),
			errors.Fields{"selection": c.Selection})
	}
	return nil
}

// mutationCount derives the fixed number of mutation offspring per
// generation. Together with crossoverCount it is computed once and held
// constant for the whole run.
func (c *Config) mutationCount() int {
	return int(math.Ceil(float64(c.PopulationSize) * c.MutationRatio))
}

func (c *Config) crossoverCount() int {
	return c.PopulationSize - c.mutationCount()
}
