package logs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// levelPriority defines the priority of each log level
// higher value = more severe
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

var slogLevels = map[Level]slog.Level{
	DEBUG: slog.LevelDebug,
	INFO:  slog.LevelInfo,
	WARN:  slog.LevelWarn,
	ERROR: slog.LevelError,
}

// ParseLevel converts a config string such as "info" or "WARN" into a Level.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelPriority[level]; !ok {
		return "", fmt.Errorf("unknown log level %q: want debug|info|warn|error", s)
	}
	return level, nil
}

type Entry struct {
	TimeStamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// Logger keeps the most recent entries in memory for the health analyzer
// and forwards every accepted entry to an optional slog sink.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   Level
	sink    *slog.Logger
}

// level: minimum log level to record (DEBUG, INFO, WARN, ERROR)
//
// maxSize: maximum number of log entries kept in memory
func NewLogger(maxSize int, level Level) *Logger {
	return &Logger{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
	}
}

// WithSink makes the logger forward entries to sink as well.
func (l *Logger) WithSink(sink *slog.Logger) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sink = sink
	return l
}

// SetLevel changes the minimum recorded level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = level
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.level
}

// log applies level filtering and ring buffer behavior
func (l *Logger) log(level Level, msg string, args []any) {
	l.mu.Lock()

	if levelPriority[level] < levelPriority[l.level] {
		l.mu.Unlock()
		return
	}

	if l.maxSize > 0 {
		if len(l.entries) >= l.maxSize {
			// drop oldest entry (ring behavior)
			l.entries = l.entries[1:]
		}

		l.entries = append(l.entries, Entry{
			TimeStamp: time.Now(),
			Level:     level,
			Message:   msg,
			Attrs:     attrs(args),
		})
	}
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		sink.Log(context.Background(), slogLevels[level], msg, args...)
	}
}

// attrs turns slog-style key/value pairs into a map.
func attrs(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}

	out := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			out["!BADKEY"] = args[i]
			break
		}
		out[fmt.Sprint(args[i])] = args[i+1]
	}
	return out
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args)
}

func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}

	start := len(l.entries) - n
	out := make([]Entry, n)
	copy(out, l.entries[start:])
	return out
}
