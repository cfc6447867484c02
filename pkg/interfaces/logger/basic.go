package logger

import (
	"fmt"
	"os"
	"sync"
)

// BasicLogger prints log lines to stderr. It keeps stdout clean for command
// output such as generated digests.
type BasicLogger struct {
	mu     *sync.Mutex
	fields []Field
}

var _ Logger = (*BasicLogger)(nil)

// New returns a basic logger that writes to stderr.
func New() *BasicLogger {
	return &BasicLogger{mu: &sync.Mutex{}}
}

// Default returns the default basic logger implementation.
func Default() Logger {
	return New()
}

func (l *BasicLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := &BasicLogger{mu: l.mu}
	next.fields = append(next.fields, l.fields...)
	next.fields = append(next.fields, fields...)
	return next
}

func (l *BasicLogger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields...) }
func (l *BasicLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields...) }

func (l *BasicLogger) log(level, msg string, fields ...Field) {
	line := fmt.Sprintf("[%s] %s", level, msg)
	for _, f := range append(l.fields, fields...) {
		line += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	l.mu.Lock()
	fmt.Fprintln(os.Stderr, line)
	l.mu.Unlock()
}
