package logger

import (
	"fmt"
	"log"
	"os"
)

// -----------------------------------------------------------------------------

// Logger provides leveled logging with a component name prefix
type Logger struct {
	name   string
	logger *log.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance writing to stdout
func NewLogger(name string) *Logger {
	return &Logger{
		name:   name,
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// -----------------------------------------------------------------------------

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Printf("[%s] DEBUG: %s", l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Printf("[%s] INFO: %s", l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs warnings
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Printf("[%s] WARNING: %s", l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Printf("[%s] ERROR: %s", l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Printf("[%s] CRITICAL: %s", l.name, fmt.Sprintf(format, args...))
	os.Exit(1)
}
