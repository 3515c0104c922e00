// Package selection implements the parent-sampling strategies of the engine.
// All strategies sample with replacement, return exactly the requested amount
// and draw from a single injected random source so runs stay reproducible.
package selection

import (
	"math/rand"
	"sort"

	"github.com/darwinml/darwin-go/pkg/core"
	"github.com/darwinml/darwin-go/pkg/errors"
)

// Strategy names accepted by New.
const (
	StrategyTournament     = "tournament"
	StrategyWeightedRandom = "weighted_random"
	StrategyUniform        = "uniform"
)

// Strategy produces sampled individuals from a ranked population.
type Strategy interface {
	Select(population core.Population, amount int) core.Population
}

// New builds the named strategy. tournamentSize is only used by tournament
// selection.
func New(name string, tournamentSize int, rng *rand.Rand) (Strategy, error) {
	switch name {
	case StrategyTournament:
		return NewTournament(tournamentSize, rng), nil
	case StrategyWeightedRandom:
		return NewWeightedRandom(rng), nil
	case StrategyUniform:
		return NewUniform(rng), nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfiguration, "unknown selection strategy"),
			errors.Fields{"strategy": name})
	}
}

// Tournament picks the best of k uniformly drawn competitors, amount times.
// k=1 degenerates to uniform random selection.
type Tournament struct {
	size int
	rng  *rand.Rand
}

func NewTournament(size int, rng *rand.Rand) *Tournament {
	return &Tournament{size: size, rng: rng}
}

func (t *Tournament) Select(population core.Population, amount int) core.Population {
	selected := make(core.Population, 0, amount)
	for i := 0; i < amount; i++ {
		winner := population[t.rng.Intn(len(population))]
		for j := 1; j < t.size; j++ {
			challenger := population[t.rng.Intn(len(population))]
			if challenger.Less(winner) {
				winner = challenger
			}
		}
		selected = append(selected, winner)
	}
	return selected
}

// WeightedRandom samples with probabilities proportional to rank: position i
// of the ascending-sorted population (0 = best) gets weight (N-i)/N. Equal
// weights would degenerate to uniform selection.
type WeightedRandom struct {
	rng *rand.Rand
}

func NewWeightedRandom(rng *rand.Rand) *WeightedRandom {
	return &WeightedRandom{rng: rng}
}

func (w *WeightedRandom) Select(population core.Population, amount int) core.Population {
	ranked := make(core.Population, len(population))
	copy(ranked, population)
	ranked.Sort()

	n := len(ranked)
	cumulative := make([]float64, n)
	total := 0.0
	for i := range ranked {
		total += float64(n-i) / float64(n)
		cumulative[i] = total
	}

	selected := make(core.Population, 0, amount)
	for i := 0; i < amount; i++ {
		r := w.rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, r)
		if idx >= n {
			idx = n - 1
		}
		selected = append(selected, ranked[idx])
	}
	return selected
}

// Uniform samples uniformly at random, no sorting involved.
type Uniform struct {
	rng *rand.Rand
}

func NewUniform(rng *rand.Rand) *Uniform {
	return &Uniform{rng: rng}
}

func (u *Uniform) Select(population core.Population, amount int) core.Population {
	selected := make(core.Population, 0, amount)
	for i := 0; i < amount; i++ {
		selected = append(selected, population[u.rng.Intn(len(population))])
	}
	return selected
}
