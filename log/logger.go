package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel orders messages by severity. A logger drops everything below its
// level; LogLevelNone drops everything.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelNone
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "NONE"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
	return levelNames[l]
}

// ParseLevel reads the log.level setting. Matching is case insensitive and
// an empty string means info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none", "off", "disable":
		return LogLevelNone, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger is the printf-style sink shared by the pipeline stages, the HTTP
// server and the audit listeners.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// DefaultLogger writes "[formgraph] <time> [LEVEL] message" lines through
// the standard library logger.
type DefaultLogger struct {
	logger *log.Logger
	level  LogLevel
}

// NewDefaultLogger logs to stderr.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return NewCustomLogger(os.Stderr, level)
}

// NewCustomLogger logs to out.
func NewCustomLogger(out io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(out, "[formgraph] ", log.LstdFlags),
		level:  level,
	}
}

func (l *DefaultLogger) logf(level LogLevel, format string, v []any) {
	if level < l.level {
		return
	}
	l.logger.Printf("["+level.String()+"] "+format, v...)
}

func (l *DefaultLogger) Debug(format string, v ...any) { l.logf(LogLevelDebug, format, v) }
func (l *DefaultLogger) Info(format string, v ...any)  { l.logf(LogLevelInfo, format, v) }
func (l *DefaultLogger) Warn(format string, v ...any)  { l.logf(LogLevelWarn, format, v) }
func (l *DefaultLogger) Error(format string, v ...any) { l.logf(LogLevelError, format, v) }

// NoOpLogger discards every message. SetDefaultLogger(nil) installs it.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...any) {}
func (NoOpLogger) Info(string, ...any)  {}
func (NoOpLogger) Warn(string, ...any)  {}
func (NoOpLogger) Error(string, ...any) {}

// defaultLogger backs the package-level functions. The CLI replaces it from
// the log section of the config before building the pipeline.
var defaultLogger Logger = NewDefaultLogger(LogLevelInfo)

// SetDefaultLogger replaces the process-wide logger. Not safe to call while
// requests are in flight.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		logger = NoOpLogger{}
	}
	defaultLogger = logger
}

// GetDefaultLogger returns the process-wide logger.
func GetDefaultLogger() Logger {
	return defaultLogger
}

func Debug(format string, v ...any) { defaultLogger.Debug(format, v...) }
func Info(format string, v ...any)  { defaultLogger.Info(format, v...) }
func Warn(format string, v ...any)  { defaultLogger.Warn(format, v...) }
func Error(format string, v ...any) { defaultLogger.Error(format, v...) }
