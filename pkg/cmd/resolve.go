package cmd

import "context"

// Resolution is a matched command together with the parse of its body.
type Resolution struct {
	Match
	Tokens []Token
	Result Result
}

// Invocation builds the invocation for a successful resolution.
func (r *Resolution) Invocation(data any) *Invocation {
	return &Invocation{
		Usage: r.Usage,
		Body:  r.Body,
		Args:  r.Result.Args,
		Data:  data,
	}
}

// Resolver turns raw input lines into resolutions against a registry.
type Resolver struct {
	Registry *Registry
	Parser   *Parser
	Prefix   string
}

// Resolve matches input with r.Prefix, tokenizes the body and parses it
// against the command's parameters. ok is false when no command matched.
func (r *Resolver) Resolve(ctx context.Context, input string, data any) (*Resolution, bool, error) {
	return r.ResolveWithPrefix(ctx, input, r.Prefix, data)
}

// ResolveWithPrefix is Resolve with an explicit prefix, for adapters that
// accept more than one (e.g. a bot mention).
func (r *Resolver) ResolveWithPrefix(ctx context.Context, input, prefix string, data any) (*Resolution, bool, error) {
	m, ok := MatchCommand(input, prefix, r.Registry.Commands())
	if !ok {
		return nil, false, nil
	}
	tokens := Tokenize(m.Body, r.quotes())
	result, err := r.Parser.Parse(ctx, m.Body, tokens, m.Command.Params(), data)
	if err != nil {
		return nil, true, err
	}
	return &Resolution{Match: m, Tokens: tokens, Result: result}, true, nil
}

func (r *Resolver) quotes() Quotes {
	if r.Parser.Quotes == nil {
		return DefaultQuotes
	}
	return r.Parser.Quotes
}
