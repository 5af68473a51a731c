package logging

// MockLogger captures log entries for verification in tests. The zero value
// is ready to use. Derived loggers from WithError/WithField/WithFields
// record into the same sink as the logger they were derived from.
type MockLogger struct {
	entries *[]LogEntry
	err     error
	fields  []Field
}

// LogEntry is one captured log call with its accumulated context.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

func (m *MockLogger) sink() *[]LogEntry {
	if m.entries == nil {
		m.entries = &[]LogEntry{}
	}
	return m.entries
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	sink := m.sink()
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	*sink = append(*sink, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.err,
	})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// WithError returns a derived logger recording into the same sink with the
// error attached.
func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{entries: m.sink(), err: err, fields: m.fields}
}

// WithField returns a derived logger recording into the same sink with one
// extra field.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

// WithFields returns a derived logger recording into the same sink with the
// extra fields appended.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	return &MockLogger{entries: m.sink(), err: m.err, fields: all}
}

// Entries returns all captured log entries.
func (m *MockLogger) Entries() []LogEntry {
	return *m.sink()
}

// EntriesByLevel returns the captured entries of one level (DEBUG, INFO,
// WARN, ERROR).
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var entries []LogEntry
	for _, entry := range *m.sink() {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

// HasEntry reports whether an entry with the given level and message was
// captured.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range *m.sink() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}
