package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "plain words",
			input: "a b  c",
			want:  []Token{{0, 1, "a"}, {2, 3, "b"}, {5, 6, "c"}},
		},
		{
			name:  "quoted span",
			input: `say "hello world" now`,
			want:  []Token{{0, 3, "say"}, {4, 17, "hello world"}, {18, 21, "now"}},
		},
		{
			name:  "quote inside a word is literal",
			input: `don"t stop`,
			want:  []Token{{0, 5, `don"t`}, {6, 10, "stop"}},
		},
		{
			name:  "unterminated quote",
			input: `a "b c `,
			want:  []Token{{0, 1, "a"}, {2, 6, `"b c`}},
		},
		{
			name:  "curly quotes",
			input: "“hi there“ x",
			want:  []Token{{0, 14, "hi there"}, {15, 16, "x"}},
		},
		{
			name:  "escaped closing quote",
			input: `"a\" b"`,
			want:  []Token{{0, 7, `a\" b`}},
		},
		{
			name:  "empty quotes",
			input: `"" x`,
			want:  []Token{{0, 2, ""}, {3, 4, "x"}},
		},
		{
			name:  "closing quote must end the word",
			input: `"a"b c"`,
			want:  []Token{{0, 7, `a"b c`}},
		},
		{
			name:  "tabs and newlines separate",
			input: "x\ty\nz",
			want:  []Token{{0, 1, "x"}, {2, 3, "y"}, {4, 5, "z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Tokenize(tt.input, DefaultQuotes))
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Tokenize("", DefaultQuotes))
	require.Empty(t, Tokenize(" \t\n ", DefaultQuotes))
}

func TestTokensStopsEarly(t *testing.T) {
	t.Parallel()

	var got []Token
	for tok := range Tokens("one two three", DefaultQuotes) {
		got = append(got, tok)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []Token{{0, 3, "one"}, {4, 7, "two"}}, got)
}

func TestTokenizeOffsetsSliceInput(t *testing.T) {
	t.Parallel()

	input := `kick "Big Bob" «for spam» now`
	quotes, err := ParseQuotes(`""«»`)
	require.NoError(t, err)

	tokens := Tokenize(input, quotes)
	require.Len(t, tokens, 4)
	require.Equal(t, `"Big Bob"`, input[tokens[1].Begin:tokens[1].End])
	require.Equal(t, "«for spam»", input[tokens[2].Begin:tokens[2].End])
	require.Equal(t, "for spam", tokens[2].Value)
}

func TestTokenizeRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`set "display name" to “Mr Bob“`,
		`a b c`,
		`  padded   "x  y"  `,
	}
	for _, input := range inputs {
		var values []string
		for tok := range Tokens(input, DefaultQuotes) {
			values = append(values, tok.Value)
		}
		joined := strings.Join(values, " ")

		unquoted := input
		for q := range DefaultQuotes {
			unquoted = strings.ReplaceAll(unquoted, string(q), "")
		}
		require.Equal(t, strings.Fields(unquoted), strings.Fields(joined), input)
	}
}

func TestParseQuotes(t *testing.T) {
	t.Parallel()

	q, err := ParseQuotes(`""«»`)
	require.NoError(t, err)
	require.Equal(t, Quotes{'"': '"', '«': '»'}, q)

	_, err = ParseQuotes(`"«»`)
	require.Error(t, err)

	_, err = ParseQuotes("")
	require.Error(t, err)

	_, err = ParseQuotes(`" `)
	require.Error(t, err)
}

func TestTokenizeKeepsInvalidUTF8(t *testing.T) {
	t.Parallel()

	body := "a\xffb c \"d\xfe\""
	tokens := Tokenize(body, DefaultQuotes)
	require.Equal(t, []Token{
		{Begin: 0, End: 3, Value: "a\xffb"},
		{Begin: 4, End: 5, Value: "c"},
		{Begin: 6, End: 10, Value: "d\xfe"},
	}, tokens)
	require.Equal(t, "a\xffb c \"d\xfe\"", remainderToken(body, 0, DefaultQuotes).Value)
	require.Equal(t, tokens[0].Value, body[tokens[0].Begin:tokens[0].End])
}

func TestStripQuotes(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		`"a b"`:   "a b",
		`"a b`:    `"a b`,
		`x"`:      `x"`,
		`""`:      "",
		`"a\"`:    `"a\"`,
		`"`:       `"`,
		`"a" b`:   `"a" b`,
		"“x y“":   "x y",
		"":        "",
		`"a" "b"`: `a" "b`,
	}
	for in, want := range tests {
		require.Equal(t, want, stripQuotes(in, DefaultQuotes), in)
	}
}
