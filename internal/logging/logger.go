// Package logging defines the structured logging contract for the ingestion
// pipeline. Components log through the Logger interface; the logrus adapter
// is the production implementation and MockLogger captures entries in tests.
package logging

// Field is one key-value pair of structured log context.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the pipeline's logging surface. Per-line skips and AI
// degradations are reported here rather than as errors, so every call site
// carries field context.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError attaches an error to the log context.
	WithError(err error) Logger
	// WithField attaches a single key-value pair to the log context.
	WithField(key string, value interface{}) Logger
	// WithFields attaches multiple key-value pairs to the log context.
	WithFields(fields ...Field) Logger
}
