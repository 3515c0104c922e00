package logging

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	generationKey contextKey = "generation"
)

// WithRunID attaches an experiment/run identifier to the context so every
// log line emitted during the run carries it.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID extracts the run identifier from the context.
func GetRunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

// WithGeneration attaches the current generation counter to the context.
func WithGeneration(ctx context.Context, generation int) context.Context {
	return context.WithValue(ctx, generationKey, generation)
}

// GetGeneration extracts the generation counter from the context.
func GetGeneration(ctx context.Context) (int, bool) {
	g, ok := ctx.Value(generationKey).(int)
	return g, ok
}
