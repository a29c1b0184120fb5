package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	zeta := newTestCommand("zeta", nil)
	alpha := newTestCommand("alpha", nil)
	r.Register(zeta)
	r.Register(alpha)

	require.Same(t, zeta, r.Get("zeta"))
	require.Nil(t, r.Get("missing"))
	require.Equal(t, []Command{zeta, alpha}, r.Commands())
	require.Equal(t, []Command{alpha, zeta}, r.All())
}

func TestRegistryRejectsProgrammerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command Command
	}{
		{
			name: "repeatable not last",
			command: newTestCommand("bad", []Param{
				{Name: "tags", Type: "string", Repeatable: true},
				{Name: "name", Type: "string"},
			}),
		},
		{
			name:    "duplicate parameter",
			command: newTestCommand("bad", []Param{{Name: "x", Type: "string"}, {Name: "x", Type: "int"}}),
		},
		{
			name:    "untyped parameter",
			command: newTestCommand("bad", []Param{{Name: "x"}}),
		},
		{
			name:    "unnamed parameter",
			command: newTestCommand("bad", []Param{{Type: "string"}}),
		},
		{
			name:    "invoke with spaces",
			command: newTestCommand("bad", nil, Usage{Invoke: "role add"}),
		},
		{
			name:    "empty verb",
			command: newTestCommand("bad", nil, Usage{Invoke: "role", Verbs: []string{""}}),
		},
		{
			name:    "no usages",
			command: &testCommand{name: "bad"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Panics(t, func() { NewRegistry().Register(tt.command) })
		})
	}

	r := NewRegistry()
	r.Register(newTestCommand("dup", nil))
	require.Panics(t, func() { r.Register(newTestCommand("dup", nil)) })
}

func TestMiddlewareKeepsIdentity(t *testing.T) {
	t.Parallel()

	inner := newTestCommand("role", []Param{{Name: "who", Type: "string"}})
	var order []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				order = append(order, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	wrapped := Apply(inner, mw("inner"), mw("outer"))
	require.Equal(t, "role", wrapped.Name())
	require.Equal(t, inner.Params(), wrapped.Params())
	require.Equal(t, inner.Usages(), wrapped.Usages())
	require.Same(t, inner, Root(wrapped))

	inv := &Invocation{Args: Args{"who": "bob"}}
	require.NoError(t, wrapped.Run(context.Background(), inv))
	require.Equal(t, []string{"outer", "inner"}, order)
	require.Same(t, inv, inner.ran)
}
