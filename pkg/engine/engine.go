// Package engine executes snippet code against one invocation's inputs.
// Every call evaluates the snippet source in a fresh JavaScript runtime
// pre-populated only with the helper modules, so no state leaks between
// invocations or into the rest of the application.
package engine

import (
	"context"

	"github.com/dop251/goja"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
)

// entryPointName is the callable every snippet must define.
const entryPointName = "generate"

// Engine runs snippet signing logic. The zero value is not usable; construct
// with New.
type Engine struct {
	log logger.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger wires a structured logger. Defaults to Nop.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{log: &logger.Nop{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute evaluates code in an isolated runtime, resolves the generate entry
// point and invokes it with the request's inputs. The result is the entry
// point's return value coerced to a string; the engine is algorithm-agnostic
// and does not validate the digest's shape.
//
// Failures never propagate as panics: a snippet without the entry point
// yields ErrNoEntryPoint, and any runtime failure inside snippet code yields
// an *ExecError carrying the message and interpreter stack trace. Cancelling
// ctx interrupts a running snippet.
func (e *Engine) Execute(ctx context.Context, code string, req domain.InvocationRequest) (string, error) {
	vm := goja.New()
	installModules(vm)

	if ctx != nil && ctx.Done() != nil {
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				e.log.Debug("engine: interrupting snippet", logger.Field{Key: "error", Value: ctx.Err()})
				vm.Interrupt(ctx.Err())
			case <-done:
			}
		}()
	}

	if _, err := vm.RunString(code); err != nil {
		return "", toExecError(err)
	}

	fnValue := vm.Get(entryPointName)
	fn, ok := goja.AssertFunction(fnValue)
	if fnValue == nil || !ok {
		return "", ErrNoEntryPoint
	}

	result, err := fn(goja.Undefined(), callArgs(vm, req)...)
	if err != nil {
		return "", toExecError(err)
	}
	return result.String(), nil
}

// callArgs builds the four positional arguments every entry point receives:
// payload, passcode, apiKey and keyOrder. Older three-parameter snippets
// simply never bind the fourth argument, and entry points that default
// keyOrder still receive the caller's order positionally. An absent key
// order arrives as null so snippets fall back to their own default.
func callArgs(vm *goja.Runtime, req domain.InvocationRequest) []goja.Value {
	keyOrder := goja.Null()
	if len(req.KeyOrder) > 0 {
		keyOrder = vm.ToValue(req.KeyOrder)
	}
	return []goja.Value{
		payloadValue(vm, req.Payload),
		vm.ToValue(req.Passcode),
		vm.ToValue(req.APIKey),
		keyOrder,
	}
}

// payloadValue builds the payload object in document key order so snippet
// code iterating its keys sees the same order the operator wrote.
func payloadValue(vm *goja.Runtime, p *domain.Payload) goja.Value {
	obj := vm.NewObject()
	if p == nil {
		return obj
	}
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		_ = obj.Set(k, v)
	}
	return obj
}
