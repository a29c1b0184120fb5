// Package cmd provides a transport-agnostic text command core: commands declare
// usages and typed parameters, and a Resolver turns a raw chat line into the
// matched command plus validated arguments. How a command is dispatched
// (Discord message, CLI) is defined by adapters that wrap this.
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Invocation carries what a command runner receives after resolution: the
// usage that matched, the raw argument body, the typed arguments and an opaque
// payload. Adapters set Data to their context (e.g. a Discord message context).
type Invocation struct {
	Usage Usage
	Body  string
	Args  Args
	Data  interface{}
}

// Command is the universal contract: identity, the ways it may be invoked,
// its parameters, and execution.
type Command interface {
	Name() string
	Description() string
	Usages() []Usage
	Params() []Param
	Run(ctx context.Context, inv *Invocation) error
}

// Args maps parameter names to resolved values. Repeatable parameters map to
// []any.
type Args map[string]any

// Has reports whether name was assigned a non-nil value.
func (a Args) Has(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Int(name string) int {
	switch v := a[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (a Args) Float(name string) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a Args) Duration(name string) time.Duration {
	d, _ := a[name].(time.Duration)
	return d
}

// List returns the values of a repeatable parameter. A single value is
// returned as a one-element list.
func (a Args) List(name string) []any {
	switch v := a[name].(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// Value returns the assigned value for name as T, reporting whether it had
// that type.
func Value[T any](a Args, name string) (T, bool) {
	v, ok := a[name].(T)
	return v, ok
}

// ListOf returns the values of a repeatable parameter converted to T. Values of
// another type are skipped.
func ListOf[T any](a Args, name string) []T {
	raw := a.List(name)
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Format renders the arguments in parameter order for logs and debugging.
func (a Args) Format(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%s=%v", p.Name, a[p.Name]))
	}
	return strings.Join(parts, " ")
}
