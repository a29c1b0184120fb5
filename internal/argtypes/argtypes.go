// Package argtypes holds the type parsers that turn raw command tokens into
// typed values, keyed by the Type tag of a cmd.Param.
package argtypes

import (
	"context"
	"fmt"

	"github.com/keshon/textcmd/pkg/cmd"
)

// Func parses raw text for one type tag.
type Func func(ctx context.Context, raw string, p cmd.Param, data any) (any, error)

// Registry dispatches on cmd.Param.Type. It implements cmd.TypeParser.
type Registry struct {
	parsers map[string]Func
}

// NewRegistry returns a registry with the built-in scalar types. Entity types
// are added by RegisterEntities once a Directory is available.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Func)}
	r.Register(TypeString, parseString)
	r.Register(TypeInt, parseInt)
	r.Register(TypeFloat, parseFloat)
	r.Register(TypeBool, parseBool)
	r.Register(TypeDuration, parseDuration)
	r.Register(TypeURL, parseURL)
	return r
}

// Register sets the parser for tag, replacing any previous one.
func (r *Registry) Register(tag string, f Func) {
	r.parsers[tag] = f
}

// Has reports whether tag has a parser.
func (r *Registry) Has(tag string) bool {
	_, ok := r.parsers[tag]
	return ok
}

// ParseArg implements cmd.TypeParser. An unknown tag is a wiring bug and is
// reported as an error rather than a rejection.
func (r *Registry) ParseArg(ctx context.Context, raw string, p cmd.Param, data any) (any, error) {
	f, ok := r.parsers[p.Type]
	if !ok {
		return nil, fmt.Errorf("argtypes: no parser for type %q (parameter %s)", p.Type, p.Name)
	}
	return f(ctx, raw, p, data)
}

// Check reports parameters of commands whose type has no parser.
func (r *Registry) Check(commands []cmd.Command) error {
	for _, c := range commands {
		for _, p := range c.Params() {
			if !r.Has(p.Type) {
				return fmt.Errorf("argtypes: command %s: no parser for type %q of %s", c.Name(), p.Type, p.Name)
			}
		}
	}
	return nil
}
