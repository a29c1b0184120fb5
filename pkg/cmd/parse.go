package cmd

import (
	"context"
	"errors"
)

// TypeParser converts the raw text of a token into a value for p. data is the
// adapter payload of the invocation (see Invocation.Data). Return a rejection
// (Reject, Rejectf) for input that does not fit; any other error aborts
// parsing.
type TypeParser interface {
	ParseArg(ctx context.Context, raw string, p Param, data any) (any, error)
}

// TypeParserFunc adapts a function to TypeParser.
type TypeParserFunc func(ctx context.Context, raw string, p Param, data any) (any, error)

func (f TypeParserFunc) ParseArg(ctx context.Context, raw string, p Param, data any) (any, error) {
	return f(ctx, raw, p, data)
}

// Parser assigns tokens to parameters.
type Parser struct {
	Types TypeParser
	// Quotes is used to strip quotes around remainder values. Nil means
	// DefaultQuotes.
	Quotes Quotes
	// PreviewLength bounds the invalid token preview. Zero means
	// DefaultPreviewLength.
	PreviewLength int
	// DisableCache makes every attempt call the type parser again.
	DisableCache bool
}

var errNoTypes = errors.New("cmd: parser has no type parsers")

type attemptKey struct {
	param int
	token Token
}

type attempt struct {
	ok    bool
	value any
}

// parseRun is the state of one Parse call. The attempt cache is shared by the
// real pass and every dry run beneath it.
type parseRun struct {
	ctx      context.Context
	parser   *Parser
	body     string
	params   []Param
	data     any
	total    int
	attempts map[attemptKey]attempt
}

// Parse assigns tokens of body to params. Bad input is reported through the
// Result. A *ResolveError means a type parser failed for another reason,
// including cancellation of ctx; any other error means p has no type parsers.
func (p *Parser) Parse(ctx context.Context, body string, tokens []Token, params []Param, data any) (Result, error) {
	if p.Types == nil {
		return Result{}, errNoTypes
	}
	run := &parseRun{
		ctx:      ctx,
		parser:   p,
		body:     body,
		params:   params,
		data:     data,
		total:    len(tokens),
		attempts: make(map[attemptKey]attempt),
	}
	return run.assign(tokens, 0, Args{})
}

// Parse runs a Parser with default settings.
func Parse(ctx context.Context, body string, tokens []Token, params []Param, types TypeParser, data any) (Result, error) {
	p := &Parser{Types: types}
	return p.Parse(ctx, body, tokens, params, data)
}

func (r *parseRun) quotes() Quotes {
	if r.parser.Quotes == nil {
		return DefaultQuotes
	}
	return r.parser.Quotes
}

func (r *parseRun) previewLength() int {
	if r.parser.PreviewLength == 0 {
		return DefaultPreviewLength
	}
	return r.parser.PreviewLength
}

// assign matches queue against params[from:]. With a nil args it is a dry
// run: every check and cache write happens, but nothing is assigned.
func (r *parseRun) assign(queue []Token, from int, args Args) (Result, error) {
	dry := args == nil
	last := len(r.params) - 1

	for i := from; i < len(r.params); i++ {
		p := r.params[i]

		if len(queue) == 0 {
			if !p.IsOptional() {
				return Result{Outcome: NotEnoughParameters}, nil
			}
			if !dry {
				args[p.Name] = p.defaultValue()
			}
			continue
		}

		tok := queue[0]
		var (
			value     any
			ok        bool
			checked   bool
			remainder bool
			err       error
		)
		if p.Remainder {
			rest := remainderToken(r.body, tok.Begin, r.quotes())
			value, ok, err = r.check(i, rest)
			if err != nil {
				return Result{}, err
			}
			switch {
			case ok:
				tok, remainder, checked = rest, true, true
			case !p.Repeatable:
				tok, checked = rest, true
			}
		}
		if !checked {
			value, ok, err = r.check(i, tok)
			if err != nil {
				return Result{}, err
			}
		}

		if !ok {
			if !p.IsOptional() {
				return Result{
					Outcome:  InvalidParameter,
					Position: r.total - len(queue) + 1,
					Preview:  Preview(tok.Value, r.previewLength()),
				}, nil
			}
			if !dry {
				args[p.Name] = p.defaultValue()
			}
			continue
		}

		rest := queue[1:]
		if remainder {
			rest = nil
		}

		if p.IsOptional() && i != last {
			peek, err := r.assign(rest, i+1, nil)
			if err != nil {
				return Result{}, err
			}
			if !peek.OK() {
				if !dry {
					args[p.Name] = p.defaultValue()
				}
				continue
			}
		}

		queue = rest

		if i == last && p.Repeatable {
			list := []any{value}
			for len(queue) > 0 {
				v, ok, err := r.check(i, queue[0])
				if err != nil {
					return Result{}, err
				}
				if !ok {
					break
				}
				list = append(list, v)
				queue = queue[1:]
			}
			value = list
		}

		if !dry {
			args[p.Name] = value
		}
	}

	if len(queue) > 0 {
		return Result{Outcome: TooManyParameters}, nil
	}
	return Result{Outcome: Success, Args: args}, nil
}

// check converts tok for params[i] and runs its validators, memoized per
// (parameter, token).
func (r *parseRun) check(i int, tok Token) (any, bool, error) {
	key := attemptKey{param: i, token: tok}
	if !r.parser.DisableCache {
		if a, hit := r.attempts[key]; hit {
			return a.value, a.ok, nil
		}
	}

	p := r.params[i]
	if err := r.ctx.Err(); err != nil {
		return nil, false, &ResolveError{Param: p.Name, Token: tok, Err: err}
	}

	value, err := r.parser.Types.ParseArg(r.ctx, tok.Value, p, r.data)
	if err == nil {
		for _, validate := range p.Validators {
			if err = validate(r.ctx, value, p); err != nil {
				break
			}
		}
	}

	var a attempt
	switch {
	case err == nil:
		a = attempt{ok: true, value: value}
	case IsRejection(err):
	default:
		return nil, false, &ResolveError{Param: p.Name, Token: tok, Err: err}
	}
	r.attempts[key] = a
	return a.value, a.ok, nil
}
