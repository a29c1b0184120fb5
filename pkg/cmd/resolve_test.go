package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testResolver() (*Resolver, *testCommand, *testCommand) {
	r := NewRegistry()
	role := newTestCommand("role", []Param{{Name: "who", Type: "string", Optional: true}})
	roleAdd := newTestCommand("role-add", []Param{
		{Name: "who", Type: "string"},
		{Name: "roles", Type: "string", Repeatable: true},
	}, Usage{Invoke: "role", Verbs: []string{"add"}})
	r.Register(role)
	r.Register(roleAdd)
	return &Resolver{Registry: r, Parser: &Parser{Types: &testTypes{}}, Prefix: "!"}, role, roleAdd
}

func TestResolve(t *testing.T) {
	t.Parallel()

	resolver, role, roleAdd := testResolver()
	ctx := context.Background()

	res, ok, err := resolver.Resolve(ctx, `!role add "Big Bob" mod admin`, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, roleAdd, res.Command)
	require.True(t, res.Result.OK())
	require.Equal(t, Args{"who": "Big Bob", "roles": []any{"mod", "admin"}}, res.Result.Args)
	require.Len(t, res.Tokens, 3)

	inv := res.Invocation("payload")
	require.NoError(t, res.Command.Run(ctx, inv))
	require.Equal(t, "payload", roleAdd.ran.Data)
	require.Equal(t, `"Big Bob" mod admin`, roleAdd.ran.Body)
	require.Equal(t, []string{"add"}, roleAdd.ran.Usage.Verbs)

	res, ok, err = resolver.Resolve(ctx, "!role", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, role, res.Command)
	require.Equal(t, Args{"who": nil}, res.Result.Args)

	res, ok, err = resolver.Resolve(ctx, "!role add bob", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, NotEnoughParameters, res.Result.Outcome)

	_, ok, err = resolver.Resolve(ctx, "!nope", nil)
	require.NoError(t, err)
	require.False(t, ok)

	res, ok, err = resolver.ResolveWithPrefix(ctx, "<@42> role x", "<@42>", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", res.Result.Args.String("who"))
}

func TestResolveInfrastructureError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := NewRegistry()
	r.Register(newTestCommand("who", []Param{{Name: "x", Type: "fail"}}))
	resolver := &Resolver{Registry: r, Parser: &Parser{Types: &testTypes{err: boom}}, Prefix: "!"}

	res, ok, err := resolver.Resolve(context.Background(), "!who me", nil)
	require.True(t, ok)
	require.Nil(t, res)
	require.ErrorIs(t, err, boom)
}

func TestFormatUsage(t *testing.T) {
	t.Parallel()

	_, role, roleAdd := testResolver()
	require.Equal(t, []string{"!role [who]"}, UsageLines("!", role))
	require.Equal(t, []string{"!role add <who> <roles...>"}, UsageLines("!", roleAdd))

	params := []Param{
		{Name: "count", Type: "int", HasDefault: true, Default: 10},
		{Name: "text", Type: "string", Remainder: true},
	}
	require.Equal(t, "?remind [count] <text...>", FormatUsage("?", Usage{Invoke: "remind"}, params))

	hidden := newTestCommand("ping", nil, Usage{Invoke: "ping"}, Usage{Invoke: "pong", Hidden: true})
	require.Equal(t, []string{"!ping"}, UsageLines("!", hidden))
}

func TestArgs(t *testing.T) {
	t.Parallel()

	a := Args{"s": "x", "n": 3, "f": 1.5, "b": true, "list": []any{"a", 1, "b"}, "nil": nil}
	require.True(t, a.Has("s"))
	require.False(t, a.Has("nil"))
	require.False(t, a.Has("missing"))
	require.Equal(t, "x", a.String("s"))
	require.Equal(t, 3, a.Int("n"))
	require.Equal(t, 3.0, a.Float("n"))
	require.Equal(t, 1.5, a.Float("f"))
	require.True(t, a.Bool("b"))
	require.Equal(t, []any{"x"}, a.List("s"))
	require.Nil(t, a.List("nil"))
	require.Equal(t, []string{"a", "b"}, ListOf[string](a, "list"))

	n, ok := Value[int](a, "n")
	require.True(t, ok)
	require.Equal(t, 3, n)

	require.Equal(t, "s=x n=3", a.Format([]Param{{Name: "s"}, {Name: "n"}}))
}
