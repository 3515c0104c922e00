// Package reporting receives per-generation records from the engine and
// persists them. The engine is agnostic to the storage format; sinks here
// cover in-memory capture, CSV files and SQLite.
package reporting

import (
	"context"
	"sync"

	"github.com/darwinml/darwin-go/pkg/core"
)

// Record describes one individual at one generation boundary.
type Record struct {
	Generation int             `json:"generation"`
	Index      int             `json:"individual_index"`
	Fenotype   string          `json:"fenotype"`
	Depth      int             `json:"depth"`
	Size       int             `json:"size"`
	Evaluation core.Evaluation `json:"evaluation"`
}

// Reporter is the sink for generation records. ReportGeneration is invoked
// synchronously after every generation, once per generation, with one record
// per individual in rank order.
type Reporter interface {
	ReportGeneration(ctx context.Context, records []Record) error
	Close() error
}

// Memory keeps all reported records in memory. Useful for tests and for
// callers that post-process a run programmatically.
type Memory struct {
	mu          sync.Mutex
	generations [][]Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ReportGeneration(ctx context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]Record, len(records))
	copy(snapshot, records)
	m.generations = append(m.generations, snapshot)
	return nil
}

func (m *Memory) Close() error { return nil }

// Generations returns the recorded generations in report order.
func (m *Memory) Generations() [][]Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Record, len(m.generations))
	copy(out, m.generations)
	return out
}

// Multi fans records out to several reporters in order.
type Multi []Reporter

func (m Multi) ReportGeneration(ctx context.Context, records []Record) error {
	for _, r := range m {
		if err := r.ReportGeneration(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var firstErr error
	for _, r := range m {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
