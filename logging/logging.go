// Package logging provides leveled console logging for the planner packages.
// Lines are written as LEVEL TIMESTAMP [component] message key=value ...
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel parses a level name case-insensitively. Unknown names yield
// LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelPriority[l]; ok {
		return l, true
	}
	return LevelInfo, false
}

// Logger provides structured logging to stdout.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
}

// New creates a new Logger at INFO writing to stdout.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New()
	l.output = io.Discard
	return l
}

// WithComponent returns a new logger with the given component name.
// The new logger shares the output and its lock.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	l.mu.Lock()
	minLevel := l.minLevel
	l.mu.Unlock()
	if levelPriority[level] < levelPriority[minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Planner event helpers ---

// TasksEvaluated logs how many tasks were due on a day.
func (l *Logger) TasksEvaluated(day string, due, total int) {
	l.Debug("tasks_evaluated", map[string]interface{}{
		"day":   day,
		"due":   due,
		"total": total,
	})
}

// TaskSaved logs a created or updated task.
func (l *Logger) TaskSaved(id, pattern string, created bool) {
	op := "update"
	if created {
		op = "create"
	}
	l.Info("task_saved", map[string]interface{}{
		"task":    id,
		"pattern": pattern,
		"op":      op,
	})
}

// CompletionRecorded logs a task marked done or undone on a day.
func (l *Logger) CompletionRecorded(taskID, day string, done bool) {
	l.Info("completion_recorded", map[string]interface{}{
		"task": taskID,
		"day":  day,
		"done": done,
	})
}

// StreakComputed logs an aggregate over a window.
func (l *Logger) StreakComputed(from, today string, current, longest int, duration time.Duration) {
	l.Debug("streak_computed", map[string]interface{}{
		"from":     from,
		"today":    today,
		"current":  current,
		"longest":  longest,
		"duration": duration.String(),
	})
}

// SkippedRow logs a stored row that could not be decoded.
func (l *Logger) SkippedRow(key string, err error) {
	l.Warn("row_skipped", map[string]interface{}{
		"key":   key,
		"error": err.Error(),
	})
}

// StoreError logs a failed store operation.
func (l *Logger) StoreError(op, key string, err error) {
	l.Error("store_error", map[string]interface{}{
		"op":    op,
		"key":   key,
		"error": err.Error(),
	})
}

// SettingsReset logs a reset of all settings flags.
func (l *Logger) SettingsReset(cleared int) {
	l.Info("settings_reset", map[string]interface{}{
		"cleared": cleared,
	})
}
