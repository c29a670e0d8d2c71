package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/h264play/pkg/ports"
)

// LogEntry is one message recorded by Logger.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a mock implementation of ports.Logger that records formatted
// messages. Loggers derived with WithComponent share the parent's record.
type Logger struct {
	component string
	shared    *logRecord
}

type logRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new recording logger.
func NewLogger() *Logger {
	return &Logger{shared: &logRecord{}}
}

func (m *Logger) record(level ports.LogLevel, msg string, args []interface{}) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	m.shared.entries = append(m.shared.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.record(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.record(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.record(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.record(ports.LevelError, msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, shared: m.shared}
}

// Entries returns a copy of the recorded messages.
func (m *Logger) Entries() []LogEntry {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	return append([]LogEntry(nil), m.shared.entries...)
}

// Contains reports whether a message at level contains substr.
func (m *Logger) Contains(level ports.LogLevel, substr string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ ports.Logger = (*Logger)(nil)
