package engine

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// ErrNoEntryPoint is returned when a snippet does not define the required
// generate entry point.
var ErrNoEntryPoint = errors.New(`engine: snippet must define a "generate" function`)

// ExecError carries a snippet runtime failure: the thrown message plus the
// interpreter stack trace for diagnostics. Nothing escapes the engine as a
// panic; every failure inside snippet code becomes one of these.
type ExecError struct {
	Message string
	Stack   string
}

func (e *ExecError) Error() string {
	return "engine: snippet execution failed: " + e.Message
}

// Details returns the message followed by the stack trace, the form a shell
// renders to the operator.
func (e *ExecError) Details() string {
	if e.Stack == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Stack
}

func toExecError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &ExecError{
			Message: "execution interrupted: " + valueMessage(interrupted.Value()),
			Stack:   interrupted.String(),
		}
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return &ExecError{
			Message: valueMessage(ex.Value()),
			Stack:   ex.String(),
		}
	}
	return &ExecError{Message: err.Error()}
}

func valueMessage(v any) string {
	if v == nil {
		return "unknown error"
	}
	if gv, ok := v.(goja.Value); ok {
		return gv.String()
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", v)
}
