// Package waygate emulates a small slice of the kernel32 and user32 API
// surface on top of a synthetic, in-memory OS state.
package waygate

import (
	"fmt"
	"strings"

	"github.com/apex/log"
)

// NotImplementedError is returned when no handler claims a symbol.
type NotImplementedError struct {
	Symbol string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("waygate: symbol '%s' is not implemented", e.Symbol)
}

type handler func(st *State, sym Symbol, args Args) string

// Engine routes calls to the kernel32 and user32 handler tables.
type Engine struct {
	state *State
}

// NewEngine returns an engine bound to st. A nil st binds the process-wide
// DefaultState.
func NewEngine(st *State) *Engine {
	if st == nil {
		st = DefaultState()
	}
	return &Engine{state: st}
}

// State returns the state the engine mutates.
func (e *Engine) State() *State {
	return e.state
}

// Dispatch emulates one call and returns a diagnostic describing its effect.
func (e *Engine) Dispatch(name string, args []string) (string, error) {
	sym, ok := Lookup(name)
	if !ok {
		return "", &NotImplementedError{Symbol: name}
	}
	h, ok := kernel32Handlers[sym]
	if !ok {
		if h, ok = user32Handlers[sym]; !ok {
			return "", &NotImplementedError{Symbol: name}
		}
	}
	log.WithFields(log.Fields{
		"module": sym.Module(),
		"symbol": name,
		"args":   len(args),
	}).Debug("waygate dispatch")
	return h(e.state, sym, ParseArgs(args)), nil
}

// Dispatch emulates one call against DefaultState.
func Dispatch(name string, args []string) (string, error) {
	return NewEngine(nil).Dispatch(name, args)
}

func outcome(m Module, format string, a ...any) string {
	return fmt.Sprintf("[waygate::%s] ", m) + fmt.Sprintf(format, a...)
}

// called is the effect of entry points that only need to be acknowledged.
func called(m Module) handler {
	return func(_ *State, sym Symbol, args Args) string {
		if len(args) == 0 {
			return outcome(m, "%s called", sym)
		}
		raw := make([]string, 0, len(args))
		for _, a := range args {
			if a.Name == "" {
				raw = append(raw, a.Value)
			} else {
				raw = append(raw, a.Name+"="+a.Value)
			}
		}
		return outcome(m, "%s called with args: %s", sym, strings.Join(raw, ", "))
	}
}
