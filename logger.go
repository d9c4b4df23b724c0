package lottery

import (
	"io"
	"log"
	"os"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// DefaultLogger implements Logger using standard log package
type DefaultLogger struct {
	out   *log.Logger
	debug bool
}

// NewDefaultLogger creates a logger writing to w; debug enables Debug output.
// A nil writer logs to stderr.
func NewDefaultLogger(w io.Writer, debug bool) *DefaultLogger {
	if w == nil {
		w = os.Stderr
	}
	return &DefaultLogger{
		out:   log.New(w, "", log.LstdFlags),
		debug: debug,
	}
}

func (l *DefaultLogger) printf(format string, args ...any) {
	if l.out == nil {
		log.Printf(format, args...)
		return
	}
	l.out.Printf(format, args...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...any) {
	l.printf("[INFO] "+msg, args...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...any) {
	l.printf("[ERROR] "+msg, args...)
}

// Debug logs a debug message when debug output is enabled
func (l *DefaultLogger) Debug(msg string, args ...any) {
	if !l.debug {
		return
	}
	l.printf("[DEBUG] "+msg, args...)
}

// SilentLogger implements Logger interface but does not output any logs
// This is useful for testing environments where log output is not desired
type SilentLogger struct{}

// NewSilentLogger creates a new silent logger instance
func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

// Info does nothing (silent)
func (l *SilentLogger) Info(msg string, args ...any) {}

// Error does nothing (silent)
func (l *SilentLogger) Error(msg string, args ...any) {}

// Debug does nothing (silent)
func (l *SilentLogger) Debug(msg string, args ...any) {}
