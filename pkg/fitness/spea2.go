package fitness

import (
	"math"
	"sort"

	"github.com/darwinml/darwin-go/pkg/core"
	"github.com/darwinml/darwin-go/pkg/errors"
)

// SPEA2 ranks individuals by Pareto-dominance strength with an inverted
// crowding-distance tie-break. Objective values are maximized: an individual
// weakly dominates another when its vector is >= in every dimension, and
// strictly dominates when it is > in every dimension.
//
// The evaluation produced is (raw fitness, inverted crowding distance). Raw
// fitness 0 means Pareto-optimal within the current set. The inversion
// penalizes boundary points: extremes carry a -Inf raw distance and so
// receive the maximal (worst) inverted value on the tie-break.
type SPEA2 struct{}

func (SPEA2) Assign(population core.Population) error {
	n := len(population)
	if n < 3 {
		return errors.WithFields(
			errors.New(errors.DegeneratePopulation, "population too small for crowding distance"),
			errors.Fields{"population_size": n})
	}

	values := make([][]float64, n)
	for i, ind := range population {
		values[i] = ind.ObjectiveValues()
	}
	objectives := len(values[0])

	raw := rawFitness(values, objectives)
	inverted, err := invertedCrowdingDistances(values, objectives)
	if err != nil {
		return err
	}

	for i, ind := range population {
		ind.SetEvaluation(core.Evaluation{float64(raw[i]), inverted[i]})
	}
	return nil
}

// rawFitness computes SPEA2-style strength ranking. strength(i) is the count
// of individuals weakly dominated by i, self excluded; rawFitness(i) is the
// sum of strengths over the individuals that strictly dominate i.
func rawFitness(values [][]float64, objectives int) []int {
	n := len(values)

	strengths := make([]int, n)
	for i := 0; i < n; i++ {
		dominated := 0
		for j := 0; j < n; j++ {
			if weaklyDominates(values[i], values[j], objectives) {
				dominated++
			}
		}
		strengths[i] = dominated - 1
	}

	raw := make([]int, n)
	for i := 0; i < n; i++ {
		total := 0
		for j := 0; j < n; j++ {
			if strictlyDominates(values[j], values[i], objectives) {
				total += strengths[j]
			}
		}
		raw[i] = total
	}
	return raw
}

func weaklyDominates(a, b []float64, objectives int) bool {
	for k := 0; k < objectives; k++ {
		if a[k] < b[k] {
			return false
		}
	}
	return true
}

func strictlyDominates(a, b []float64, objectives int) bool {
	for k := 0; k < objectives; k++ {
		if a[k] <= b[k] {
			return false
		}
	}
	return true
}

// invertedCrowdingDistances estimates neighborhood sparsity per individual.
// For each dimension the population is sorted by that objective; the two
// boundary individuals accumulate -Inf and each interior individual the gap
// between its neighbors. Per-individual totals are averaged over the
// objective count, then inverted against the population maximum so that
// larger spacing ranks better under ascending order.
//
// The accumulator is indexed by position in the current population and is
// only meaningful within this single pass; membership and order change every
// generation.
func invertedCrowdingDistances(values [][]float64, objectives int) ([]float64, error) {
	n := len(values)

	sums := make([]float64, n)
	order := make([]int, n)
	for k := 0; k < objectives; k++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return values[order[a]][k] < values[order[b]][k]
		})

		sums[order[0]] += math.Inf(-1)
		sums[order[n-1]] += math.Inf(-1)
		for i := 1; i < n-1; i++ {
			sums[order[i]] += values[order[i+1]][k] - values[order[i-1]][k]
		}
	}

	maxDistance := math.Inf(-1)
	for i := range sums {
		sums[i] /= float64(objectives)
		if sums[i] > maxDistance {
			maxDistance = sums[i]
		}
	}
	if math.IsInf(maxDistance, -1) {
		return nil, errors.WithFields(
			errors.New(errors.DegeneratePopulation, "every individual lies on an objective-space boundary"),
			errors.Fields{"population_size": n, "objectives": objectives})
	}

	inverted := make([]float64, n)
	for i, d := range sums {
		inverted[i] = maxDistance - d
	}
	return inverted, nil
}
