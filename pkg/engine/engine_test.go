package engine

import (
	"context"
	stderrors "errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/darwinml/darwin-go/internal/testutil"
	"github.com/darwinml/darwin-go/pkg/core"
	"github.com/darwinml/darwin-go/pkg/errors"
	"github.com/darwinml/darwin-go/pkg/reporting"
	"github.com/darwinml/darwin-go/pkg/selection"
)

func singleObjective() []core.Objective {
	return []core.Objective{testutil.ValueObjective("value")}
}

func frontObjectives() []core.Objective {
	return []core.Objective{
		testutil.ValueObjective("value"),
		testutil.NegatedValueObjective("negated_value"),
	}
}

func TestNewValidates(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{1}}

	_, err := New(&Config{PopulationSize: 0, Generations: 1, Selection: selection.StrategyTournament, TournamentSize: 2}, model, singleObjective())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.InvalidConfiguration))

	_, err = New(DefaultConfig(), nil, singleObjective())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.InvalidConfiguration))

	_, err = New(DefaultConfig(), model, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.InvalidConfiguration))

	eng, err := New(nil, model, singleObjective())
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestFitSingleObjectiveScenario(t *testing.T) {
	// Objective values [5,1,3] must sort to [1,3,5] with the 1.0 fenotype as
	// champion.
	model := &testutil.ScriptedModel{Seeds: []float64{5, 1, 3}}
	cfg := &Config{PopulationSize: 3, Generations: 1, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, singleObjective(), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	champion, err := eng.Fit(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "value(1)", champion.String())

	pop := eng.Population()
	require.Len(t, pop, 3)
	assert.True(t, pop[0].Evaluation().Equal(core.Evaluation{1.0}))
	assert.True(t, pop[1].Evaluation().Equal(core.Evaluation{3.0}))
	assert.True(t, pop[2].Evaluation().Equal(core.Evaluation{5.0}))

	assert.EqualValues(t, 3, model.EvaluateCalls())
}

func TestPopulationSizeInvariant(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{4, 8, 2, 6, 1, 9}, MutateDelta: 0.5}
	reporter := reporting.NewMemory()
	cfg := &Config{PopulationSize: 6, Generations: 4, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, singleObjective(),
		WithRand(rand.New(rand.NewSource(2))), WithReporter(reporter))
	require.NoError(t, err)

	_, err = eng.Fit(context.Background(), nil, nil)
	require.NoError(t, err)

	generations := reporter.Generations()
	require.Len(t, generations, 4, "initial evaluation plus three offspring rounds")
	for g, records := range generations {
		assert.Len(t, records, 6, "generation %d must hold exactly population_size records", g)
		assert.Equal(t, g, records[0].Generation)
	}
}

func TestChampionHasMinimalEvaluation(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{7, 3, 9, 5}, MutateDelta: -0.25}
	cfg := &Config{PopulationSize: 4, Generations: 5, MutationRatio: 0.5,
		Selection: selection.StrategyWeightedRandom, TournamentSize: 2}

	eng, err := New(cfg, model, singleObjective(), WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)

	champion, err := eng.Fit(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, champion)

	pop := eng.Population()
	for i, ind := range pop {
		assert.False(t, ind.Less(pop[0]), "individual %d ranks better than the champion", i)
	}
	assert.Equal(t, champion, eng.Champion())
}

func TestRunIsDeterministicUnderSeed(t *testing.T) {
	run := func() (string, [][]reporting.Record) {
		model := &testutil.ScriptedModel{Seeds: []float64{4, 8, 2, 6}, MutateDelta: 0.5}
		reporter := reporting.NewMemory()
		cfg := &Config{PopulationSize: 4, Generations: 6, MutationRatio: 0.5,
			Selection: selection.StrategyTournament, TournamentSize: 2}

		eng, err := New(cfg, model, singleObjective(),
			WithRand(rand.New(rand.NewSource(42))), WithReporter(reporter))
		require.NoError(t, err)

		champion, err := eng.Fit(context.Background(), nil, nil)
		require.NoError(t, err)
		return champion.String(), reporter.Generations()
	}

	championA, recordsA := run()
	championB, recordsB := run()

	assert.Equal(t, championA, championB)
	assert.Equal(t, recordsA, recordsB)
}

func TestSurvivorsAreNeverReEvaluated(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{4, 8, 2, 6}, MutateDelta: 0.5}
	objective, objectiveCalls := testutil.CountingObjective(testutil.ValueObjective("value"))
	cfg := &Config{PopulationSize: 4, Generations: 3, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, []core.Objective{objective},
		WithRand(rand.New(rand.NewSource(5))))
	require.NoError(t, err)

	_, err = eng.Fit(context.Background(), nil, nil)
	require.NoError(t, err)

	// Every individual ever created is scored exactly once: 4 initial plus
	// 4 offspring in each of the 2 reproduction rounds.
	assert.EqualValues(t, 12, model.EvaluateCalls())
	assert.EqualValues(t, 12, objectiveCalls.Load())
}

func TestMultiObjectiveRun(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{1, 2, 3, 4}, MutateDelta: 0.25}
	cfg := &Config{PopulationSize: 4, Generations: 4, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, frontObjectives(), WithRand(rand.New(rand.NewSource(6))))
	require.NoError(t, err)

	champion, err := eng.Fit(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, champion)

	pop := eng.Population()
	require.Len(t, pop, 4)
	for _, ind := range pop {
		require.Len(t, ind.Evaluation(), 2, "multi-objective evaluations carry a tie-break component")
	}
	// The objectives are mutually non-dominating, so the champion must be
	// Pareto-optimal.
	assert.Equal(t, 0.0, pop[0].Evaluation()[0])
}

func TestConcurrentEvaluationMatchesSequential(t *testing.T) {
	run := func(concurrency int) [][]reporting.Record {
		model := &testutil.ScriptedModel{Seeds: []float64{4, 8, 2, 6}, MutateDelta: 0.5}
		reporter := reporting.NewMemory()
		cfg := &Config{PopulationSize: 4, Generations: 5, MutationRatio: 0.5,
			Selection: selection.StrategyTournament, TournamentSize: 2, Concurrency: concurrency}

		eng, err := New(cfg, model, singleObjective(),
			WithRand(rand.New(rand.NewSource(7))), WithReporter(reporter))
		require.NoError(t, err)

		_, err = eng.Fit(context.Background(), nil, nil)
		require.NoError(t, err)
		return reporter.Generations()
	}

	assert.Equal(t, run(1), run(4), "parallel evaluation must merge deterministically")
}

func TestGenerationErrorsAbortRun(t *testing.T) {
	t.Run("generate failure", func(t *testing.T) {
		model := &testutil.MockModel{}
		model.On("GeneratePopulation", mock.Anything, 3).Return(nil, stderrors.New("backend down"))

		cfg := &Config{PopulationSize: 3, Generations: 2, MutationRatio: 1.0,
			Selection: selection.StrategyTournament, TournamentSize: 2}
		eng, err := New(cfg, model, singleObjective())
		require.NoError(t, err)

		_, err = eng.Fit(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.EvaluationFailed))
	})

	t.Run("evaluate failure", func(t *testing.T) {
		fenotypes := []core.Fenotype{
			testutil.ValueFenotype{Value: 1},
			testutil.ValueFenotype{Value: 2},
			testutil.ValueFenotype{Value: 3},
		}
		model := &testutil.MockModel{}
		model.On("GeneratePopulation", mock.Anything, 3).Return(fenotypes, nil)
		model.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(nil, stderrors.New("divide by zero"))

		cfg := &Config{PopulationSize: 3, Generations: 2, MutationRatio: 1.0,
			Selection: selection.StrategyTournament, TournamentSize: 2}
		eng, err := New(cfg, model, singleObjective())
		require.NoError(t, err)

		_, err = eng.Fit(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.EvaluationFailed))
		assert.Nil(t, eng.Champion(), "no champion is produced on an aborted run")
	})

	t.Run("mutate failure", func(t *testing.T) {
		fenotypes := []core.Fenotype{
			testutil.ValueFenotype{Value: 1},
			testutil.ValueFenotype{Value: 2},
			testutil.ValueFenotype{Value: 3},
		}
		model := &testutil.MockModel{}
		model.On("GeneratePopulation", mock.Anything, 3).Return(fenotypes, nil)
		model.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(1.0, nil)
		model.On("Mutate", mock.Anything, mock.Anything).Return(nil, stderrors.New("invalid subtree"))

		cfg := &Config{PopulationSize: 3, Generations: 2, MutationRatio: 1.0,
			Selection: selection.StrategyTournament, TournamentSize: 2}
		eng, err := New(cfg, model, singleObjective())
		require.NoError(t, err)

		_, err = eng.Fit(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.EvaluationFailed))
	})

	t.Run("objective failure", func(t *testing.T) {
		model := &testutil.ScriptedModel{Seeds: []float64{1, 2, 3}}
		failing := core.Objective{
			Name: "failing",
			Fn: func(labels, predictions any, args ...any) (float64, error) {
				return 0, stderrors.New("labels missing")
			},
		}
		cfg := &Config{PopulationSize: 3, Generations: 1, MutationRatio: 0.5,
			Selection: selection.StrategyTournament, TournamentSize: 2}
		eng, err := New(cfg, model, []core.Objective{failing})
		require.NoError(t, err)

		_, err = eng.Fit(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.EvaluationFailed))
	})
}

func TestDegeneratePopulationAborts(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{1, 2}}
	cfg := &Config{PopulationSize: 2, Generations: 1, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, frontObjectives())
	require.NoError(t, err)

	_, err = eng.Fit(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.DegeneratePopulation))
}

type failingReporter struct{}

func (failingReporter) ReportGeneration(ctx context.Context, records []reporting.Record) error {
	return stderrors.New("sink closed")
}
func (failingReporter) Close() error { return nil }

func TestReporterErrorAborts(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{1, 2, 3}}
	cfg := &Config{PopulationSize: 3, Generations: 2, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, singleObjective(), WithReporter(failingReporter{}))
	require.NoError(t, err)

	_, err = eng.Fit(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ReportingFailed))
}

func TestPredict(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{5, 1, 3}}
	cfg := &Config{PopulationSize: 3, Generations: 1, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, singleObjective())
	require.NoError(t, err)

	_, err = eng.Predict(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.NotFitted))

	_, err = eng.Fit(context.Background(), nil, nil)
	require.NoError(t, err)

	predictions, err := eng.Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, predictions, "predict delegates to Model.Evaluate on the champion")
}

func TestCanceledContextAbortsBetweenGenerations(t *testing.T) {
	model := &testutil.ScriptedModel{Seeds: []float64{1, 2, 3}, MutateDelta: 0.5}
	cfg := &Config{PopulationSize: 3, Generations: 5, MutationRatio: 0.5,
		Selection: selection.StrategyTournament, TournamentSize: 2}

	eng, err := New(cfg, model, singleObjective())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Fit(ctx, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.Canceled))
}
