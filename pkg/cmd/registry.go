package cmd

import (
	"fmt"
	"sort"
)

// Registry stores commands by name in registration order. It does not
// dispatch; a Resolver matches input against it and adapters invoke the result.
type Registry struct {
	commands map[string]Command
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. It panics on duplicate names and on invalid usages
// or parameters.
func (r *Registry) Register(c Command) {
	name := c.Name()
	if _, exists := r.commands[name]; exists {
		panic(fmt.Sprintf("cmd: command %q registered twice", name))
	}
	ValidateUsages(name, c.Usages())
	ValidateParams(name, c.Params())
	r.commands[name] = c
	r.order = append(r.order, name)
}

// Get returns the command with the given name, or nil.
func (r *Registry) Get(name string) Command {
	return r.commands[name]
}

// Commands returns commands in registration order. Matching relies on this
// order to break ties between equally specific usages.
func (r *Registry) Commands() []Command {
	list := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.commands[name])
	}
	return list
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []Command {
	list := r.Commands()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
