package logging

// LogEntry represents a structured log record with fields relevant to
// evolutionary runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	RunID      string // Experiment/run identifier, when present in the context
	Generation int    // Generation counter, -1 when not inside a generation

	// General structured data
	Fields map[string]interface{}
}
