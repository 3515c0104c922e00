// Package testutil provides deterministic Models and counting objectives for
// engine tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/darwinml/darwin-go/pkg/core"
)

// ValueFenotype is a minimal fenotype carrying a single float payload.
type ValueFenotype struct {
	Value float64
}

func (v ValueFenotype) String() string { return fmt.Sprintf("value(%g)", v.Value) }
func (v ValueFenotype) Depth() int     { return 1 }
func (v ValueFenotype) Size() int      { return 1 }

// ScriptedModel is a fully deterministic core.Model over ValueFenotypes:
// generation cycles through Seeds, mutation adds MutateDelta and crossover
// averages the parents. Evaluate returns the raw value and counts its calls,
// which makes memoization observable.
type ScriptedModel struct {
	Seeds       []float64
	MutateDelta float64

	evaluateCalls atomic.Int64
}

func (m *ScriptedModel) GeneratePopulation(ctx context.Context, n int) ([]core.Fenotype, error) {
	out := make([]core.Fenotype, n)
	for i := range out {
		out[i] = ValueFenotype{Value: m.Seeds[i%len(m.Seeds)]}
	}
	return out, nil
}

func (m *ScriptedModel) Mutate(ctx context.Context, fenotype core.Fenotype) (core.Fenotype, error) {
	return ValueFenotype{Value: fenotype.(ValueFenotype).Value + m.MutateDelta}, nil
}

func (m *ScriptedModel) Crossover(ctx context.Context, first, second core.Fenotype) (core.Fenotype, error) {
	a := first.(ValueFenotype).Value
	b := second.(ValueFenotype).Value
	return ValueFenotype{Value: (a + b) / 2}, nil
}

func (m *ScriptedModel) Evaluate(ctx context.Context, fenotype core.Fenotype, inputs any) (any, error) {
	m.evaluateCalls.Add(1)
	return fenotype.(ValueFenotype).Value, nil
}

// EvaluateCalls returns how many times Evaluate ran.
func (m *ScriptedModel) EvaluateCalls() int64 {
	return m.evaluateCalls.Load()
}

// ValueObjective scores the prediction itself; combined with ScriptedModel
// the engine minimizes (or maximizes) the raw fenotype value.
func ValueObjective(name string) core.Objective {
	return core.Objective{
		Name: name,
		Fn: func(labels, predictions any, args ...any) (float64, error) {
			return predictions.(float64), nil
		},
	}
}

// NegatedValueObjective scores the negated prediction, handy for building a
// mutual non-domination front against ValueObjective.
func NegatedValueObjective(name string) core.Objective {
	return core.Objective{
		Name: name,
		Fn: func(labels, predictions any, args ...any) (float64, error) {
			return -predictions.(float64), nil
		},
	}
}

// CountingObjective wraps an objective and counts its invocations.
func CountingObjective(objective core.Objective) (core.Objective, *atomic.Int64) {
	count := &atomic.Int64{}
	fn := objective.Fn
	objective.Fn = func(labels, predictions any, args ...any) (float64, error) {
		count.Add(1)
		return fn(labels, predictions, args...)
	}
	return objective, count
}

// MockModel is a testify mock implementation of core.Model for error-path
// tests.
type MockModel struct {
	mock.Mock
}

func (m *MockModel) GeneratePopulation(ctx context.Context, n int) ([]core.Fenotype, error) {
	args := m.Called(ctx, n)
	if fenotypes := args.Get(0); fenotypes != nil {
		return fenotypes.([]core.Fenotype), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModel) Mutate(ctx context.Context, fenotype core.Fenotype) (core.Fenotype, error) {
	args := m.Called(ctx, fenotype)
	if f := args.Get(0); f != nil {
		return f.(core.Fenotype), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModel) Crossover(ctx context.Context, first, second core.Fenotype) (core.Fenotype, error) {
	args := m.Called(ctx, first, second)
	if f := args.Get(0); f != nil {
		return f.(core.Fenotype), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModel) Evaluate(ctx context.Context, fenotype core.Fenotype, inputs any) (any, error) {
	args := m.Called(ctx, fenotype, inputs)
	return args.Get(0), args.Error(1)
}
