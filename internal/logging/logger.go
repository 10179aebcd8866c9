// Package logging provides the leveled logger used throughout the
// repository engine and its FUSE adapter. Loggers form a dotted hierarchy
// that mirrors the virtual path namespace the repository itself manages:
// a subsystem logger obtained via WithPrefix carries its parent's full
// prefix plus its own segment ("vrepo.resolve", "vrepo.children", ...)
// rather than discarding the parent's name.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// Logger provides structured, leveled logging scoped to a dotted prefix
// path.
type Logger struct {
	level  LogLevel
	prefix string
	out    io.Writer
	logger *log.Logger
	mu     sync.RWMutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the process-wide root logger, prefixed "vrepo" and
// writing to stdout, configured from the environment on first use.
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger("vrepo", os.Stdout)

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			switch level {
			case "ERROR":
				defaultLogger.SetLevel(LevelError)
			case "WARN":
				defaultLogger.SetLevel(LevelWarn)
			case "INFO":
				defaultLogger.SetLevel(LevelInfo)
			case "DEBUG":
				defaultLogger.SetLevel(LevelDebug)
			case "TRACE":
				defaultLogger.SetLevel(LevelTrace)
			}
		}

		// VREPO_DEBUG forces debug logging regardless of LOG_LEVEL, for
		// quick troubleshooting without remembering the level name.
		if os.Getenv("VREPO_DEBUG") != "" {
			defaultLogger.SetLevel(LevelDebug)
		}
	})
	return defaultLogger
}

// NewLogger creates a root logger at prefix, writing to out. Most callers
// should use GetLogger().WithPrefix(subsystem) instead; NewLogger exists
// for tests that need an isolated logger over a buffer.
func NewLogger(prefix string, out io.Writer) *Logger {
	l := &Logger{level: LevelInfo, prefix: prefix, out: out}
	l.rebuild()
	return l
}

// rebuild constructs the underlying stdlib logger for the current prefix
// and output. Called whenever either changes.
func (l *Logger) rebuild() {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC
	if os.Getenv("LOG_LONGFILE") != "" {
		flags |= log.Llongfile
	} else {
		flags |= log.Lshortfile
	}
	l.logger = log.New(l.out, l.prefix+": ", flags)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// shouldLog determines if a message at the given level should be logged
func (l *Logger) shouldLog(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level <= l.level
}

// log performs the actual logging
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if err := l.logger.Output(3, fmt.Sprintf("[%s] %s", levelNames[level], msg)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log message: %v\n", err)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(LevelTrace, format, args...)
}

// WithPrefix returns a subsystem logger nested under l, writing to l's
// output and scoped to the dotted path "l.prefix.segment". The child starts
// at a copy of l's current level; later SetLevel calls on either logger do
// not affect the other. Unlike a
// flat prefix replacement, this keeps the caller's place in the logger
// hierarchy visible in every line it writes.
func (l *Logger) WithPrefix(segment string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &Logger{
		level:  l.level,
		prefix: l.prefix + "." + segment,
		out:    l.out,
	}
	child.rebuild()
	return child
}
