package lsp

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// LogLevel orders log verbosity: silent suppresses everything, debug is the
// most chatty.
type LogLevel uint8

const (
	LogSilent LogLevel = iota
	LogError
	LogWarn
	LogInfo
	LogDebug
)

// ParseLogLevel converts a CLI spelling into a LogLevel.
func ParseLogLevel(value string) (LogLevel, error) {
	switch value {
	case "silent":
		return LogSilent, nil
	case "error":
		return LogError, nil
	case "warn":
		return LogWarn, nil
	case "info":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	}
	return LogSilent, fmt.Errorf("unknown log level %q", value)
}

var (
	logErrorTag = color.New(color.FgRed, color.Bold)
	logWarnTag  = color.New(color.FgYellow)
	logDebugTag = color.New(color.FgHiBlack)
)

// Logger writes tagged line-oriented text to a side channel (stderr),
// never to the protocol stream. Built once at startup; nothing mutates
// the level afterwards.
type Logger struct {
	w     io.Writer
	level LogLevel
	color bool
}

// NewLogger creates a logger writing to w at the given minimum level.
func NewLogger(w io.Writer, level LogLevel, colored bool) *Logger {
	return &Logger{w: w, level: level, color: colored}
}

func (l *Logger) Errorf(format string, args ...any) {
	l.write(LogError, "error", logErrorTag, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.write(LogWarn, "warn", logWarnTag, format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.write(LogInfo, "info", nil, format, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.write(LogDebug, "debug", logDebugTag, format, args...)
}

func (l *Logger) write(level LogLevel, label string, tag *color.Color, format string, args ...any) {
	if l == nil || l.w == nil || level > l.level {
		return
	}
	if l.color && tag != nil {
		label = tag.Sprint(label)
	}
	fmt.Fprintf(l.w, "drift-lsp: %s: "+format+"\n", append([]any{label}, args...)...)
}
