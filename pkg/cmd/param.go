package cmd

import (
	"fmt"
	"strings"
)

// Usage is one way to invoke a command: an invoke word plus the literal verbs
// that must follow it ("role" + "add"). The first usage of a command is its
// primary one, the rest are aliases. Hidden usages match but are left out of
// help listings.
type Usage struct {
	Invoke string
	Verbs  []string
	Hidden bool
}

// String renders the usage as typed by a user, without prefix.
func (u Usage) String() string {
	if len(u.Verbs) == 0 {
		return u.Invoke
	}
	return u.Invoke + " " + strings.Join(u.Verbs, " ")
}

// Param describes one positional parameter of a command.
type Param struct {
	Name        string
	Description string
	// Type selects the TypeParser used to convert raw text.
	Type string

	Optional   bool
	HasDefault bool
	Default    any

	// Remainder parameters take the rest of the body as one value.
	Remainder bool
	// Repeatable parameters take every remaining token that validates. Only
	// the last parameter may be repeatable.
	Repeatable bool

	Validators []Validator
}

// IsOptional reports whether the parameter may be left unassigned.
func (p Param) IsOptional() bool {
	return p.Optional || p.HasDefault
}

func (p Param) defaultValue() any {
	if p.Repeatable && p.Default == nil {
		return []any{}
	}
	return p.Default
}

// ValidateParams panics when params violate registration invariants. These
// are programmer errors and never reach the parser.
func ValidateParams(command string, params []Param) {
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if p.Name == "" {
			panic(fmt.Sprintf("cmd: %s: parameter %d has no name", command, i+1))
		}
		if seen[p.Name] {
			panic(fmt.Sprintf("cmd: %s: duplicate parameter %q", command, p.Name))
		}
		seen[p.Name] = true
		if p.Type == "" {
			panic(fmt.Sprintf("cmd: %s: parameter %q has no type", command, p.Name))
		}
		if p.Repeatable && i != len(params)-1 {
			panic(fmt.Sprintf("cmd: %s: repeatable parameter %q must be the last one", command, p.Name))
		}
	}
}

// ValidateUsages panics when a command declares no usage or an empty invoke
// word.
func ValidateUsages(command string, usages []Usage) {
	if len(usages) == 0 {
		panic(fmt.Sprintf("cmd: %s: no usages", command))
	}
	for _, u := range usages {
		if strings.TrimSpace(u.Invoke) == "" || strings.ContainsFunc(u.Invoke, isSpace) {
			panic(fmt.Sprintf("cmd: %s: invalid invoke word %q", command, u.Invoke))
		}
		for _, v := range u.Verbs {
			if v == "" || strings.ContainsFunc(v, isSpace) {
				panic(fmt.Sprintf("cmd: %s: invalid verb %q", command, v))
			}
		}
	}
}
