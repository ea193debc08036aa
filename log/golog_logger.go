package log

import (
	"io"

	"github.com/kataras/golog"
)

// GologLogger sends messages to a kataras/golog logger. It is selected with
// log.backend: golog and keeps the golog level in step with its own.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// gologLevels maps a LogLevel to golog's level names.
var gologLevels = map[LogLevel]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
	LogLevelNone:  "disable",
}

// NewGologLogger wraps an existing golog logger at info level.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	l := &GologLogger{logger: logger}
	l.SetLevel(LogLevelInfo)
	return l
}

// NewGologLoggerWithOutput builds a golog logger writing to out with the
// same "[formgraph]" prefix as DefaultLogger.
func NewGologLoggerWithOutput(out io.Writer, level LogLevel) *GologLogger {
	g := golog.New()
	g.SetOutput(out)
	g.SetPrefix("[formgraph] ")
	l := &GologLogger{logger: g}
	l.SetLevel(level)
	return l
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		l.logger.Errorf(format, v...)
	}
}

// SetLevel changes the level. Unknown levels fall back to info.
func (l *GologLogger) SetLevel(level LogLevel) {
	l.level = level
	name, ok := gologLevels[level]
	if !ok {
		name = "info"
	}
	l.logger.SetLevel(name)
}

func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}
