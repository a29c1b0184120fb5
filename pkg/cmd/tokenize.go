package cmd

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one argument word of a command body. Begin and End are byte
// offsets into the body; for quoted tokens they cover the quote glyphs, which
// are not part of Value.
type Token struct {
	Begin int
	End   int
	Value string
}

// Quotes maps opening quote glyphs to their closing glyph.
type Quotes map[rune]rune

// DefaultQuotes accepts straight and curly double quotes. Every glyph closes
// itself, so “text“ and ”text” work as well as "text".
var DefaultQuotes = Quotes{
	'"': '"',
	'“': '“',
	'”': '”',
	'„': '„',
	'‟': '‟',
}

// ParseQuotes builds a quote map from consecutive opening/closing pairs, e.g.
// `""“”«»`.
func ParseQuotes(pairs string) (Quotes, error) {
	runes := []rune(pairs)
	if len(runes) == 0 || len(runes)%2 != 0 {
		return nil, fmt.Errorf("quote pairs %q: want an even, non-zero number of glyphs", pairs)
	}
	q := make(Quotes, len(runes)/2)
	for i := 0; i < len(runes); i += 2 {
		if isSpace(runes[i]) || isSpace(runes[i+1]) {
			return nil, fmt.Errorf("quote pairs %q: whitespace is not a quote", pairs)
		}
		q[runes[i]] = runes[i+1]
	}
	return q, nil
}

// noRune stands for the position before the start or after the end of input.
const noRune rune = -1

func isSpace(r rune) bool { return unicode.IsSpace(r) }

func isEdge(r rune) bool { return r == noRune || isSpace(r) }

// openQuote reports whether r opens a quoted span given the rune before it,
// and returns the glyph that closes it.
func openQuote(q Quotes, r, prev rune) (rune, bool) {
	closing, ok := q[r]
	if !ok || !isEdge(prev) {
		return 0, false
	}
	return closing, true
}

// closeQuote reports whether r closes a span opened with a glyph whose
// closing glyph is closing.
func closeQuote(closing, r, prev, next rune) bool {
	return r == closing && isEdge(next) && prev != '\\'
}

// Tokens lazily splits input into whitespace separated tokens, honoring quoted
// spans. An unterminated quote yields one literal token running from the
// opening glyph to the end of input.
func Tokens(input string, quotes Quotes) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		var (
			b        strings.Builder
			building bool
			quoted   bool
			closing  rune
			begin    int
			prev     = noRune
		)
		for i := 0; i < len(input); {
			r, size := utf8.DecodeRuneInString(input[i:])
			next := noRune
			if i+size < len(input) {
				next, _ = utf8.DecodeRuneInString(input[i+size:])
			}

			switch {
			case quoted:
				if closeQuote(closing, r, prev, next) {
					quoted, building = false, false
					if !yield(Token{Begin: begin, End: i + size, Value: b.String()}) {
						return
					}
					b.Reset()
				} else {
					b.WriteString(input[i : i+size])
				}
			case isSpace(r):
				if building {
					building = false
					if !yield(Token{Begin: begin, End: i, Value: b.String()}) {
						return
					}
					b.Reset()
				}
			case !building:
				building, begin = true, i
				if c, ok := openQuote(quotes, r, prev); ok {
					quoted, closing = true, c
				} else {
					b.WriteString(input[i : i+size])
				}
			default:
				b.WriteString(input[i : i+size])
			}

			prev = r
			i += size
		}

		switch {
		case quoted:
			v := strings.TrimRightFunc(input[begin:], isSpace)
			yield(Token{Begin: begin, End: begin + len(v), Value: v})
		case building:
			yield(Token{Begin: begin, End: len(input), Value: b.String()})
		}
	}
}

// Tokenize collects Tokens into a slice.
func Tokenize(input string, quotes Quotes) []Token {
	return slices.Collect(Tokens(input, quotes))
}

// stripQuotes removes one layer of matching quotes surrounding s, using the
// same open and close rules as Tokens.
func stripQuotes(s string, q Quotes) string {
	first, fsize := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError && fsize <= 1 {
		return s
	}
	closing, ok := openQuote(q, first, noRune)
	if !ok {
		return s
	}
	last, lsize := utf8.DecodeLastRuneInString(s)
	if len(s) < fsize+lsize {
		return s
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:len(s)-lsize])
	if !closeQuote(closing, last, prev, noRune) {
		return s
	}
	return s[fsize : len(s)-lsize]
}

// remainderToken spans from begin to the end of body with surrounding quotes
// stripped.
func remainderToken(body string, begin int, q Quotes) Token {
	raw := strings.TrimRightFunc(body[begin:], isSpace)
	return Token{Begin: begin, End: begin + len(raw), Value: stripQuotes(raw, q)}
}
