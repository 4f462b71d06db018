// Package logger provides structured leveled logging and in-process metrics.
//
// Entries are written one per line, either as JSON or as human readable text.
// The package-level functions use a default logger that commands replace at
// startup with SetDefault.
//
//	logger.Info("Upload applied", logger.Fields{
//	    "filename": "events.xlsx",
//	    "events":   12,
//	})
//
//	logger.Warn("Upload rejected", logger.Fields{"filename": name}, err)
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/term"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a config string to a Level, INFO when unknown.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the line encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	// FormatAuto picks text for terminals and JSON otherwise.
	FormatAuto Format = "auto"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Entry is a single log line.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger provides structured logging
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	format   Format
	out      io.Writer
	now      func() time.Time
}

// New creates a logger writing entries at or above level to out.
func New(level Level, out io.Writer, format Format) *Logger {
	if format == FormatAuto || format == "" {
		format = detectFormat(out)
	}
	return &Logger{
		minLevel: level,
		format:   format,
		out:      out,
		now:      time.Now,
	}
}

// detectFormat returns text when out is an interactive terminal.
func detectFormat(out io.Writer) Format {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return FormatText
	}
	return FormatJSON
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	entry := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	var line string
	if l.format == FormatText {
		line = formatText(entry)
	} else {
		data, marshalErr := sonic.Marshal(entry)
		if marshalErr != nil {
			line = fmt.Sprintf("[%s] %s: %s (marshal error: %v)", entry.Timestamp, entry.Level, entry.Message, marshalErr)
		} else {
			line = string(data)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

func formatText(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", e.Timestamp, e.Level, e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	return b.String()
}

// Debug logs a diagnostic message.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a recoverable problem, optionally with the error that caused it.
func (l *Logger) Warn(message string, fields Fields, err error) {
	l.log(LevelWarn, message, fields, err)
}

// Error logs a failure.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(LevelInfo, os.Stderr, FormatAuto)
)

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Debug logs with the default logger
func Debug(message string, fields Fields) {
	Default().Debug(message, fields)
}

// Info logs with the default logger
func Info(message string, fields Fields) {
	Default().Info(message, fields)
}

// Warn logs with the default logger
func Warn(message string, fields Fields, err error) {
	Default().Warn(message, fields, err)
}

// Error logs with the default logger
func Error(message string, fields Fields, err error) {
	Default().Error(message, fields, err)
}
