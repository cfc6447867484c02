package logger

// Field represents a structured logging key/value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the contract expected by HashGen services: debug traces for
// engine and seeding events, errors for persistence failures. Secrets such
// as passcodes must never be passed as field values; callers log invocation
// metadata only.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Nop is a no-op logger implementation useful for tests.
type Nop struct{}

// Ensure Nop satisfies Logger.
var _ Logger = (*Nop)(nil)

func (n *Nop) With(fields ...Field) Logger       { return n }
func (n *Nop) Debug(msg string, fields ...Field) {}
func (n *Nop) Error(msg string, fields ...Field) {}
